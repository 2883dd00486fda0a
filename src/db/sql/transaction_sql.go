package db

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"snapshot-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UpsertTransactionsTx applies added/modified feed records inside the
// caller's transaction. Records whose account is not yet stored locally
// are skipped with a warning; that happens during backfill races and
// must not fail the batch. Returns the number of rows written.
func UpsertTransactionsTx(ctx context.Context, tx pgx.Tx, userID int64, records []models.TransactionRecord) (int, error) {
	upserted := 0
	for _, record := range records {
		var accountDBID int64
		lookup := `
			SELECT a.id
			FROM accounts a
			JOIN items i ON a.item_id = i.id
			WHERE a.account_id = $1 AND i.user_id = $2
		`
		err := tx.QueryRow(ctx, lookup, record.AccountID, userID).Scan(&accountDBID)
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("WARN: Account not found for transaction %s (account %s, user %d), skipping",
				record.TransactionID, record.AccountID, userID)
			continue
		}
		if err != nil {
			return upserted, err
		}

		category, err := marshalCategory(record.Category)
		if err != nil {
			return upserted, err
		}

		query := `
			INSERT INTO transactions (
				account_id, transaction_id, amount, iso_currency_code, date,
				authorized_date, name, merchant_name, category, pending, transaction_type
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (transaction_id)
			DO UPDATE SET
				amount = EXCLUDED.amount,
				iso_currency_code = EXCLUDED.iso_currency_code,
				date = EXCLUDED.date,
				authorized_date = EXCLUDED.authorized_date,
				name = EXCLUDED.name,
				merchant_name = EXCLUDED.merchant_name,
				category = EXCLUDED.category,
				pending = EXCLUDED.pending,
				transaction_type = EXCLUDED.transaction_type,
				updated_at = NOW()
		`

		_, err = tx.Exec(ctx, query,
			accountDBID,
			record.TransactionID,
			record.Amount,
			record.Currency,
			record.Date,
			record.AuthorizedDate,
			record.Name,
			record.MerchantName,
			category,
			record.Pending,
			record.TransactionType,
		)
		if err != nil {
			return upserted, err
		}
		upserted++
	}

	return upserted, nil
}

// RemoveTransactionsTx deletes by external identifier. Identifiers with
// no stored row are silently ignored.
func RemoveTransactionsTx(ctx context.Context, tx pgx.Tx, transactionIDs []string) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = ANY($1)`, transactionIDs)
	return err
}

// GetTransactionsForUser returns the full mirrored history for a user,
// the snapshot the recurring detector runs over.
func GetTransactionsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.transaction_id, t.amount, t.iso_currency_code, t.date,
			t.authorized_date, t.name, t.merchant_name, t.category, t.pending, t.transaction_type,
			t.created_at, t.updated_at
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		JOIN items i ON a.item_id = i.id
		WHERE i.user_id = $1
		ORDER BY t.date
	`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func GetTransactionsForAccount(ctx context.Context, pool *pgxpool.Pool, userID, accountDBID int64) ([]models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.transaction_id, t.amount, t.iso_currency_code, t.date,
			t.authorized_date, t.name, t.merchant_name, t.category, t.pending, t.transaction_type,
			t.created_at, t.updated_at
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		JOIN items i ON a.item_id = i.id
		WHERE i.user_id = $1 AND a.id = $2
		ORDER BY t.date DESC
	`

	rows, err := pool.Query(ctx, query, userID, accountDBID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var category *string
		err := rows.Scan(&txn.ID, &txn.AccountID, &txn.TransactionID, &txn.Amount,
			&txn.Currency, &txn.Date, &txn.AuthorizedDate, &txn.Name, &txn.MerchantName,
			&category, &txn.Pending, &txn.TransactionType, &txn.CreatedAt, &txn.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if category != nil {
			if err := json.Unmarshal([]byte(*category), &txn.Category); err != nil {
				return nil, err
			}
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

func marshalCategory(category []string) (*string, error) {
	if len(category) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(category)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}
