package models

// SyncPage is one page of the aggregator's transaction change feed.
type SyncPage struct {
	Added      []TransactionRecord
	Modified   []TransactionRecord
	Removed    []string
	NextCursor string
	HasMore    bool
}

// ItemSyncResult is the per-item entry in a sync run's aggregate result.
// Error is set instead of the totals when the item's sync failed.
type ItemSyncResult struct {
	ItemID             string `json:"item_id"`
	TransactionsSynced int    `json:"transactions_synced"`
	Cursor             string `json:"cursor,omitempty"`
	Error              string `json:"error,omitempty"`
}

type SyncSummary struct {
	UserID            int64            `json:"user_id"`
	TotalTransactions int              `json:"total_transactions_synced"`
	ItemsSynced       int              `json:"items_synced"`
	Results           []ItemSyncResult `json:"sync_results"`
	FullSync          bool             `json:"full_sync"`
}
