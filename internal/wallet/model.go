package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypePayment    TransactionType = "PAYMENT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeRefund     TransactionType = "REFUND"
	TypeEarning    TransactionType = "EARNING"
)

// IsCredit reports whether entries of this type increase the balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TypeDeposit, TypeRefund, TypeEarning:
		return true
	default:
		return false
	}
}

func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypePayment, TypeWithdrawal, TypeRefund, TypeEarning:
		return true
	default:
		return false
	}
}

// Wallet is the single balance a user holds on the platform.
type Wallet struct {
	ID        int             `db:"id" json:"id"`
	UserID    int             `db:"user_id" json:"userId"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	Currency  string          `db:"currency" json:"currency"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// Transaction is an append-only ledger entry. Amount is always positive;
// the type decides the direction.
type Transaction struct {
	ID           int             `db:"id" json:"id"`
	WalletID     int             `db:"wallet_id" json:"walletId"`
	Type         TransactionType `db:"type" json:"type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balanceAfter"`
	Description  string          `db:"description" json:"description"`
	BookingID    *int            `db:"booking_id" json:"bookingId,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// Entry is a ledger mutation request.
type Entry struct {
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	BookingID   *int
}

type DepositRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=chapa telebirr"`
}

type WithdrawRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	AccountNumber string          `json:"accountNumber" validate:"required,min=5"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=telebirr"`
}

type BalanceResponse struct {
	Wallet       *Wallet       `json:"wallet"`
	Transactions []Transaction `json:"transactions"`
}

type MutationResponse struct {
	Wallet      *Wallet      `json:"wallet"`
	Transaction *Transaction `json:"transaction"`
}
