package sync

import (
	"context"

	dbsql "snapshot-server/src/db/sql"
	"snapshot-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store applies one feed page as a single atomic write-group: upserts,
// removals, and the cursor advance commit together or not at all. If
// anything fails the stored cursor stays at its pre-page value, so the
// next run retries the same page safely.
type Store interface {
	ApplyPage(ctx context.Context, userID, itemDBID int64, page models.SyncPage) (int, error)
}

type PgxStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *PgxStore {
	return &PgxStore{pool: pool}
}

func (s *PgxStore) ApplyPage(ctx context.Context, userID, itemDBID int64, page models.SyncPage) (int, error) {
	total := 0
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		n, err := dbsql.UpsertTransactionsTx(ctx, tx, userID, page.Added)
		if err != nil {
			return err
		}
		total += n

		n, err = dbsql.UpsertTransactionsTx(ctx, tx, userID, page.Modified)
		if err != nil {
			return err
		}
		total += n

		if err := dbsql.RemoveTransactionsTx(ctx, tx, page.Removed); err != nil {
			return err
		}

		return dbsql.AdvanceCursorTx(ctx, tx, itemDBID, page.NextCursor)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
