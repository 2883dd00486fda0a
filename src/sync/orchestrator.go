package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"snapshot-server/src/config"
	"snapshot-server/src/models"
)

// Feed is the slice of the aggregator client the orchestrator consumes.
type Feed interface {
	SyncTransactions(ctx context.Context, accessToken string, cursor *string, count int32) (models.SyncPage, error)
}

// Decrypter turns a stored access-token ciphertext back into the
// credential the feed needs.
type Decrypter interface {
	Decrypt(encrypted string) (string, error)
}

// Orchestrator drives the cursor-based pagination loop for each linked
// item. Pages for one item are strictly sequential; items are
// independent of each other.
type Orchestrator struct {
	feed   Feed
	store  Store
	cipher Decrypter
	cfg    config.SyncConfig
	locks  *itemLocks
}

func NewOrchestrator(feed Feed, store Store, cipher Decrypter, cfg config.SyncConfig) *Orchestrator {
	return &Orchestrator{
		feed:   feed,
		store:  store,
		cipher: cipher,
		cfg:    cfg,
		locks:  newItemLocks(),
	}
}

// SyncItem reconciles one item's local mirror against the change feed.
// fullSync restarts from the beginning of history regardless of the
// stored cursor. Failures are reported in the result's Error field so
// one item never aborts its siblings.
func (o *Orchestrator) SyncItem(ctx context.Context, item models.Item, fullSync bool) models.ItemSyncResult {
	lock := o.locks.acquire(item.ID)
	lock.Lock()
	defer lock.Unlock()

	result := models.ItemSyncResult{ItemID: item.ItemID}

	accessToken, err := o.cipher.Decrypt(item.AccessToken)
	if err != nil {
		result.Error = fmt.Sprintf("decrypt access token: %v", err)
		return result
	}

	cursor := item.Cursor
	if fullSync {
		cursor = nil
	}

	pageCount := 0
	for hasMore := true; hasMore; {
		if pageCount >= o.cfg.MaxPages {
			result.Error = fmt.Sprintf("page limit of %d exceeded", o.cfg.MaxPages)
			return result
		}

		page, err := o.fetchPage(ctx, accessToken, cursor)
		if err != nil {
			result.Error = err.Error()
			return result
		}

		// One atomic write-group per page. If this fails, the stored
		// cursor still points at the pre-page position.
		count, err := o.store.ApplyPage(ctx, item.UserID, item.ID, page)
		if err != nil {
			result.Error = fmt.Sprintf("apply page: %v", err)
			return result
		}

		result.TransactionsSynced += count
		cursor = &page.NextCursor
		hasMore = page.HasMore
		pageCount++
	}

	if cursor != nil {
		result.Cursor = *cursor
	}
	return result
}

// SyncAll runs every item for the user. Items fail independently; each
// contributes its own entry to the aggregate result.
func (o *Orchestrator) SyncAll(ctx context.Context, userID int64, items []models.Item, fullSync bool) models.SyncSummary {
	summary := models.SyncSummary{UserID: userID, FullSync: fullSync}

	for _, item := range items {
		result := o.SyncItem(ctx, item, fullSync)
		if result.Error != "" {
			log.Printf("ERROR: Failed to sync item %s for user %d: %s", item.ItemID, userID, result.Error)
		} else {
			summary.TotalTransactions += result.TransactionsSynced
		}
		summary.Results = append(summary.Results, result)
	}

	summary.ItemsSynced = len(summary.Results)
	return summary
}

// fetchPage requests one feed page with a bounded timeout, retrying
// transient failures until the retry budget runs out. Fatal credential
// errors abort immediately.
func (o *Orchestrator) fetchPage(ctx context.Context, accessToken string, cursor *string) (models.SyncPage, error) {
	var lastErr error
	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return models.SyncPage{}, ctx.Err()
			case <-time.After(o.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		pageCtx, cancel := context.WithTimeout(ctx, o.cfg.PageTimeout)
		page, err := o.feed.SyncTransactions(pageCtx, accessToken, cursor, o.cfg.PageSize)
		cancel()
		if err == nil {
			return page, nil
		}

		if !isTransient(err) {
			return models.SyncPage{}, err
		}
		lastErr = err
		log.Printf("WARN: Transient feed error (attempt %d/%d): %v", attempt+1, o.cfg.MaxRetries+1, err)
	}

	return models.SyncPage{}, fmt.Errorf("retry budget exhausted: %w", lastErr)
}

func isTransient(err error) bool {
	var classified interface{ Transient() bool }
	if errors.As(err, &classified) {
		return classified.Transient()
	}
	// Unclassified errors are assumed retryable: timeouts and network
	// failures arrive here without a feed classification.
	return true
}
