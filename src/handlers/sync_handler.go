package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"snapshot-server/src/db"
	dbsql "snapshot-server/src/db/sql"
	"snapshot-server/src/sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SyncTransactions runs the incremental sync for every item the user
// has linked. Only a failure to list the items at all aborts the run;
// per-item failures come back inside the summary.
func SyncTransactions(orchestrator *sync.Orchestrator, pool *pgxpool.Pool, cache *db.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			FullSync bool `json:"full_sync"`
		}
		if r.Body != nil && r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				log.Printf("ERROR: Failed to decode sync request body: %v", err)
				http.Error(w, "invalid request", http.StatusBadRequest)
				return
			}
		}

		items, err := dbsql.GetItemsForUser(r.Context(), pool, userID)
		if err != nil {
			http.Error(w, "Failed to retrieve items", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get items for user %d: %v", userID, err)
			return
		}
		if len(items) == 0 {
			http.Error(w, "No linked accounts found for user", http.StatusNotFound)
			return
		}

		summary := orchestrator.SyncAll(r.Context(), userID, items, req.FullSync)
		cache.InvalidateUser(userID)

		log.Printf("INFO: Transaction sync completed for user %d - %d transactions across %d items",
			userID, summary.TotalTransactions, summary.ItemsSynced)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summary)
	}
}
