package db

import (
	"context"
	"time"

	"snapshot-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SaveAccountBalances records a balance snapshot per account. Accounts
// not yet mirrored locally are skipped by the INSERT ... SELECT.
func SaveAccountBalances(ctx context.Context, pool *pgxpool.Pool, userID int64, accounts []models.FeedAccount, asOf time.Time) error {
	for _, acc := range accounts {
		query := `
			INSERT INTO account_balances (
				account_id, available, current_balance, limit_amount,
				iso_currency_code, last_updated_datetime
			)
			SELECT a.id, $1, $2, $3, $4, $5
			FROM accounts a
			JOIN items i ON a.item_id = i.id
			WHERE a.account_id = $6 AND i.user_id = $7
			ON CONFLICT (account_id)
			DO UPDATE SET
				available = EXCLUDED.available,
				current_balance = EXCLUDED.current_balance,
				limit_amount = EXCLUDED.limit_amount,
				iso_currency_code = EXCLUDED.iso_currency_code,
				last_updated_datetime = EXCLUDED.last_updated_datetime
		`

		_, err := pool.Exec(ctx, query,
			acc.Available,
			acc.Current,
			acc.Limit,
			acc.Currency,
			asOf,
			acc.AccountID,
			userID,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
