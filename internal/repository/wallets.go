package repository

import (
	"context"
	"database/sql"
	"fmt"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type WalletRepository struct {
	db *database.DB
}

func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetByUserIDsForUpdate locks the wallets of the given users in one statement,
// ordered by wallet id so that concurrent transfers between the same pair of
// wallets always acquire locks in the same order. Users without a wallet are
// absent from the returned map.
func (r *WalletRepository) GetByUserIDsForUpdate(ctx context.Context, userIDs ...uuid.UUID) (map[uuid.UUID]*models.Wallet, error) {
	query := `
		SELECT id, user_id, balance, updated_at
		FROM wallets
		WHERE user_id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, pq.Array(uuidStrings(userIDs)))
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallets: %w", err)
	}
	defer rows.Close()

	wallets := make(map[uuid.UUID]*models.Wallet, len(userIDs))
	for rows.Next() {
		w := &models.Wallet{}
		if err := rows.Scan(&w.ID, &w.UserID, &w.Balance, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets[w.UserID] = w
	}

	return wallets, rows.Err()
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	w := &models.Wallet{}
	query := `SELECT id, user_id, balance, updated_at FROM wallets WHERE user_id = $1`

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, userID).Scan(&w.ID, &w.UserID, &w.Balance, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return w, err
}

func (r *WalletRepository) UpdateBalance(ctx context.Context, wallet *models.Wallet) error {
	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.Executor(ctx).ExecContext(ctx, query, wallet.Balance, wallet.UpdatedAt, wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	return expectOneRow(res, "wallets", wallet.ID)
}

func (r *WalletRepository) CreateTransactions(ctx context.Context, txs ...models.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (id, wallet_id, amount, balance_after, type, reference_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	exec := r.db.Executor(ctx)
	for _, tx := range txs {
		if _, err := exec.ExecContext(ctx, query,
			tx.ID,
			tx.WalletID,
			tx.Amount,
			tx.BalanceAfter,
			tx.Type,
			tx.ReferenceID,
			tx.Description,
			tx.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert wallet transaction: %w", err)
		}
	}
	return nil
}

// ListTransactions returns the most recent ledger rows of a wallet, newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, amount, balance_after, type, reference_id, description, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.WalletTransaction
	for rows.Next() {
		var tx models.WalletTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.WalletID,
			&tx.Amount,
			&tx.BalanceAfter,
			&tx.Type,
			&tx.ReferenceID,
			&tx.Description,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}
