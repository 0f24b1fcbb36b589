package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/db"

	"github.com/shopspring/decimal"
)

var ErrWalletNotFound = apperr.NotFound("wallet")

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx context.Context, q db.Executor, userID int, currency string) (*Wallet, error) {
	w := &Wallet{}
	err := q.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id, currency)
		 VALUES ($1, $2)
		 RETURNING id, user_id, balance, currency, created_at, updated_at`,
		userID, currency,
	).StructScan(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}
	return w, nil
}

func (r *repository) GetByUserID(ctx context.Context, q db.Executor, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := q.GetContext(ctx, w,
		`SELECT id, user_id, balance, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}
	return w, nil
}

func (r *repository) LockByUserID(ctx context.Context, q db.Executor, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := q.GetContext(ctx, w,
		`SELECT id, user_id, balance, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet for user %d: %w", userID, err)
	}
	return w, nil
}

func (r *repository) UpdateBalance(ctx context.Context, q db.Executor, walletID int, balance decimal.Decimal) error {
	result, err := q.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		balance, walletID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance of wallet %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *repository) InsertTransaction(ctx context.Context, q db.Executor, tx *Transaction) error {
	err := q.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (wallet_id, type, amount, balance_after, description, booking_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		tx.WalletID, tx.Type, tx.Amount, tx.BalanceAfter, tx.Description, tx.BookingID,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert %s transaction: %w", tx.Type, err)
	}
	return nil
}

func (r *repository) ListTransactions(ctx context.Context, q db.Executor, walletID, limit, offset int) ([]Transaction, error) {
	txs := []Transaction{}
	err := q.SelectContext(ctx, &txs, `
		SELECT id, wallet_id, type, amount, balance_after, description, booking_id, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions of wallet %d: %w", walletID, err)
	}
	return txs, nil
}
