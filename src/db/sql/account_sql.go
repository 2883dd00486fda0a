package db

import (
	"context"

	"snapshot-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

func SaveAccounts(ctx context.Context, pool *pgxpool.Pool, itemDBID int64, accounts []models.FeedAccount) error {
	for _, acc := range accounts {
		query := `
			INSERT INTO accounts (item_id, account_id, name, official_name, mask, type, subtype)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (account_id)
			DO UPDATE SET
				name = EXCLUDED.name,
				official_name = EXCLUDED.official_name,
				mask = EXCLUDED.mask,
				type = EXCLUDED.type,
				subtype = EXCLUDED.subtype,
				updated_at = NOW()
		`

		_, err := pool.Exec(ctx, query,
			itemDBID,
			acc.AccountID,
			acc.Name,
			acc.OfficialName,
			acc.Mask,
			acc.Type,
			acc.Subtype,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func GetAccountsForItem(ctx context.Context, pool *pgxpool.Pool, userID, itemDBID int64) ([]models.Account, error) {
	query := `
		SELECT a.id, a.item_id, a.account_id, a.name, a.official_name, a.mask, a.type, a.subtype, a.created_at
		FROM accounts a
		JOIN items i ON a.item_id = i.id
		WHERE i.user_id = $1 AND i.id = $2
	`

	rows, err := pool.Query(ctx, query, userID, itemDBID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(&account.ID, &account.ItemID, &account.AccountID, &account.Name,
			&account.OfficialName, &account.Mask, &account.Type, &account.Subtype, &account.CreatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}
