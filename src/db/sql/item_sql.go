package db

import (
	"context"

	"snapshot-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func GetItemsForUser(ctx context.Context, pool *pgxpool.Pool, userID int64) ([]models.Item, error) {
	query := `
		SELECT id, user_id, item_id, access_token, institution_id, institution_name, cursor, created_at
		FROM items
		WHERE user_id = $1
	`

	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		err := rows.Scan(&item.ID, &item.UserID, &item.ItemID, &item.AccessToken,
			&item.InstitutionID, &item.InstitutionName, &item.Cursor, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func GetItemByID(ctx context.Context, pool *pgxpool.Pool, userID, itemDBID int64) (models.Item, error) {
	query := `
		SELECT id, user_id, item_id, access_token, institution_id, institution_name, cursor, created_at
		FROM items
		WHERE user_id = $1 AND id = $2
	`

	var item models.Item
	err := pool.QueryRow(ctx, query, userID, itemDBID).Scan(&item.ID, &item.UserID,
		&item.ItemID, &item.AccessToken, &item.InstitutionID, &item.InstitutionName,
		&item.Cursor, &item.CreatedAt)
	return item, err
}

// GetItemByExternalID resolves an item from the aggregator-assigned
// identifier, used by the webhook path where no user session exists.
func GetItemByExternalID(ctx context.Context, pool *pgxpool.Pool, itemID string) (models.Item, error) {
	query := `
		SELECT id, user_id, item_id, access_token, institution_id, institution_name, cursor, created_at
		FROM items
		WHERE item_id = $1
	`

	var item models.Item
	err := pool.QueryRow(ctx, query, itemID).Scan(&item.ID, &item.UserID,
		&item.ItemID, &item.AccessToken, &item.InstitutionID, &item.InstitutionName,
		&item.Cursor, &item.CreatedAt)
	return item, err
}

func SaveItem(ctx context.Context, pool *pgxpool.Pool, userID int64, itemID, encryptedToken, institutionID, institutionName string) (int64, error) {
	query := `
		INSERT INTO items (user_id, item_id, access_token, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			institution_id = EXCLUDED.institution_id,
			institution_name = EXCLUDED.institution_name,
			updated_at = NOW()
		RETURNING id
	`

	var dbID int64
	err := pool.QueryRow(ctx, query, userID, itemID, encryptedToken, institutionID, institutionName).Scan(&dbID)
	return dbID, err
}

// AdvanceCursorTx overwrites the item's sync cursor inside the page's
// write-group transaction. Only one sync runs per item at a time, so no
// optimistic check is needed.
func AdvanceCursorTx(ctx context.Context, tx pgx.Tx, itemDBID int64, cursor string) error {
	query := `UPDATE items SET cursor = $1, updated_at = NOW() WHERE id = $2`
	_, err := tx.Exec(ctx, query, cursor, itemDBID)
	return err
}
