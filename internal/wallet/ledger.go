package wallet

import (
	"context"
	"fmt"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/db"
	"tutorconnect/internal/logger"
	"tutorconnect/internal/metrics"
	"tutorconnect/internal/validate"

	"github.com/shopspring/decimal"
)

var (
	MinDeposit    = decimal.NewFromInt(10)
	MaxDeposit    = decimal.NewFromInt(10000)
	MinWithdrawal = decimal.NewFromInt(50)
)

// Balances are stored as NUMERIC(14,2); finer amounts would be rounded per
// column and the ledger would stop adding up.
const centsMessage = "must have at most 2 decimal places"

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// Ledger owns every balance mutation. Each mutation locks the wallet row,
// checks the resulting balance and appends exactly one transaction.
type Ledger struct {
	db       db.DB
	repo     Repository
	currency string
}

func NewLedger(database db.DB, repo Repository, currency string) *Ledger {
	return &Ledger{db: database, repo: repo, currency: currency}
}

// CreateWallet opens an empty wallet for a freshly registered user.
func (l *Ledger) CreateWallet(ctx context.Context, q db.Executor, userID int) (*Wallet, error) {
	return l.repo.Create(ctx, q, userID, l.currency)
}

// Apply posts e against the wallet of userID using q, which is expected to be
// a transaction so the row lock lives until commit.
func (l *Ledger) Apply(ctx context.Context, q db.Executor, userID int, e Entry) (*Wallet, *Transaction, error) {
	if !e.Type.Valid() {
		return nil, nil, fmt.Errorf("unknown transaction type %q", e.Type)
	}
	if !e.Amount.IsPositive() {
		return nil, nil, apperr.Validation("amount", "must be greater than 0")
	}
	if !isCents(e.Amount) {
		return nil, nil, apperr.Validation("amount", centsMessage)
	}

	w, err := l.repo.LockByUserID(ctx, q, userID)
	if err != nil {
		return nil, nil, err
	}

	balance := w.Balance.Sub(e.Amount)
	if e.Type.IsCredit() {
		balance = w.Balance.Add(e.Amount)
	}
	if balance.IsNegative() {
		return nil, nil, fmt.Errorf("wallet %d has %s, needs %s: %w", w.ID, w.Balance, e.Amount, apperr.ErrInsufficientFunds)
	}

	if err := l.repo.UpdateBalance(ctx, q, w.ID, balance); err != nil {
		return nil, nil, err
	}

	tx := &Transaction{
		WalletID:     w.ID,
		Type:         e.Type,
		Amount:       e.Amount,
		BalanceAfter: balance,
		Description:  e.Description,
		BookingID:    e.BookingID,
	}
	if err := l.repo.InsertTransaction(ctx, q, tx); err != nil {
		return nil, nil, err
	}

	w.Balance = balance
	metrics.RecordLedgerTransaction(string(e.Type), e.Amount.InexactFloat64())
	return w, tx, nil
}

// RecordPayment debits the student for a booking.
func (l *Ledger) RecordPayment(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error {
	_, _, err := l.Apply(ctx, q, userID, Entry{
		Type:        TypePayment,
		Amount:      amount,
		Description: fmt.Sprintf("Payment for booking #%d", bookingID),
		BookingID:   &bookingID,
	})
	return err
}

// Refund returns a held booking payment to the student.
func (l *Ledger) Refund(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error {
	_, _, err := l.Apply(ctx, q, userID, Entry{
		Type:        TypeRefund,
		Amount:      amount,
		Description: fmt.Sprintf("Refund for booking #%d", bookingID),
		BookingID:   &bookingID,
	})
	return err
}

// Earn credits the tutor's share of a completed booking.
func (l *Ledger) Earn(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error {
	_, _, err := l.Apply(ctx, q, userID, Entry{
		Type:        TypeEarning,
		Amount:      amount,
		Description: fmt.Sprintf("Earning for booking #%d", bookingID),
		BookingID:   &bookingID,
	})
	return err
}

func (l *Ledger) Deposit(ctx context.Context, userID int, req DepositRequest) (*Wallet, *Transaction, error) {
	v := apperr.NewValidation()
	if req.Amount.LessThan(MinDeposit) {
		v.Add("amount", "Minimum deposit is "+MinDeposit.String())
	} else if req.Amount.GreaterThan(MaxDeposit) {
		v.Add("amount", "Maximum deposit is "+MaxDeposit.String())
	} else if !isCents(req.Amount) {
		v.Add("amount", centsMessage)
	}
	mergeFields(v, validate.Struct(req))
	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}

	var (
		w  *Wallet
		tx *Transaction
	)
	err := db.WithTx(ctx, l.db, func(q db.Executor) error {
		var err error
		w, tx, err = l.Apply(ctx, q, userID, Entry{
			Type:        TypeDeposit,
			Amount:      req.Amount,
			Description: "Deposit via " + req.PaymentMethod,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("wallet deposit", "user_id", userID, "amount", req.Amount.String(), "method", req.PaymentMethod)
	return w, tx, nil
}

func (l *Ledger) Withdraw(ctx context.Context, userID int, req WithdrawRequest) (*Wallet, *Transaction, error) {
	v := apperr.NewValidation()
	if req.Amount.LessThan(MinWithdrawal) {
		v.Add("amount", "Minimum withdrawal is "+MinWithdrawal.String())
	} else if !isCents(req.Amount) {
		v.Add("amount", centsMessage)
	}
	mergeFields(v, validate.Struct(req))
	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}

	var (
		w  *Wallet
		tx *Transaction
	)
	err := db.WithTx(ctx, l.db, func(q db.Executor) error {
		var err error
		w, tx, err = l.Apply(ctx, q, userID, Entry{
			Type:        TypeWithdrawal,
			Amount:      req.Amount,
			Description: fmt.Sprintf("Withdrawal to %s account %s", req.PaymentMethod, maskAccount(req.AccountNumber)),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("wallet withdrawal", "user_id", userID, "amount", req.Amount.String(), "method", req.PaymentMethod)
	return w, tx, nil
}

func (l *Ledger) Balance(ctx context.Context, userID int) (*Wallet, error) {
	return l.repo.GetByUserID(ctx, l.db, userID)
}

func (l *Ledger) Transactions(ctx context.Context, userID, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}
	if offset < 0 {
		offset = 0
	}

	w, err := l.repo.GetByUserID(ctx, l.db, userID)
	if err != nil {
		return nil, err
	}
	return l.repo.ListTransactions(ctx, l.db, w.ID, limit, offset)
}

func isCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

func mergeFields(v *apperr.ValidationError, err error) {
	for field, msg := range apperr.FieldsOf(err) {
		v.Add(field, msg)
	}
}

// maskAccount keeps the last four characters of an account number.
func maskAccount(account string) string {
	if len(account) <= 4 {
		return account
	}
	masked := make([]byte, len(account))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(account)-4:], account[len(account)-4:])
	return string(masked)
}
