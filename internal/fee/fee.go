// Package fee splits a gross booking amount into the platform's cut and
// the tutor's share.
package fee

import (
	"tutorconnect/internal/apperr"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Split struct {
	PlatformFee  decimal.Decimal `json:"platformFee"`
	TutorEarning decimal.Decimal `json:"tutorEarning"`
}

// Calculate returns the fee split for amount at percentage percent.
// PlatformFee is rounded to 2 places and TutorEarning takes the remainder,
// so the two always add back up to amount.
func Calculate(amount, percentage decimal.Decimal) (Split, error) {
	if !amount.IsPositive() {
		return Split{}, apperr.Validation("amount", "amount must be greater than 0")
	}
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return Split{}, apperr.Validation("feePercentage", "fee percentage must be between 0 and 100")
	}

	platformFee := amount.Mul(percentage).Div(hundred).Round(2)
	return Split{
		PlatformFee:  platformFee,
		TutorEarning: amount.Sub(platformFee),
	}, nil
}

// Policy binds the configured fee percentage.
type Policy struct {
	percentage decimal.Decimal
}

func NewPolicy(percentage decimal.Decimal) (Policy, error) {
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return Policy{}, apperr.Validation("feePercentage", "fee percentage must be between 0 and 100")
	}
	return Policy{percentage: percentage}, nil
}

func (p Policy) Percentage() decimal.Decimal {
	return p.percentage
}

func (p Policy) Split(amount decimal.Decimal) (Split, error) {
	return Calculate(amount, p.percentage)
}

// BookingAmount prices a session of minutes at hourlyRate, rounded to 2 places.
func BookingAmount(hourlyRate decimal.Decimal, minutes int) (decimal.Decimal, error) {
	if !hourlyRate.IsPositive() {
		return decimal.Zero, apperr.Validation("hourlyRate", "tutor has no hourly rate set")
	}
	if minutes <= 0 {
		return decimal.Zero, apperr.Validation("duration", "duration must be greater than 0")
	}
	return hourlyRate.Mul(decimal.NewFromInt(int64(minutes))).Div(decimal.NewFromInt(60)).Round(2), nil
}
