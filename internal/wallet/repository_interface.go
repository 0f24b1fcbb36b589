package wallet

import (
	"context"

	"tutorconnect/internal/db"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, q db.Executor, userID int, currency string) (*Wallet, error)
	GetByUserID(ctx context.Context, q db.Executor, userID int) (*Wallet, error)
	LockByUserID(ctx context.Context, q db.Executor, userID int) (*Wallet, error)
	UpdateBalance(ctx context.Context, q db.Executor, walletID int, balance decimal.Decimal) error
	InsertTransaction(ctx context.Context, q db.Executor, tx *Transaction) error
	ListTransactions(ctx context.Context, q db.Executor, walletID, limit, offset int) ([]Transaction, error)
}
