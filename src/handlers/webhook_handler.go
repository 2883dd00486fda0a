package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"snapshot-server/src/db"
	dbsql "snapshot-server/src/db/sql"
	"snapshot-server/src/models"
	"snapshot-server/src/plaid"
	"snapshot-server/src/sync"
	"snapshot-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaidWebhook verifies the webhook signature and kicks an incremental
// sync for the named item when the aggregator reports new transaction
// data.
func PlaidWebhook(plaidClient *plaid.Client, orchestrator *sync.Orchestrator, pool *pgxpool.Pool, cache *db.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		verified, err := util.VerifyWebhook(r.Context(), plaidClient.API(), body, r.Header.Get("Plaid-Verification"))
		if err != nil || !verified {
			log.Printf("ERROR: Webhook verification failed: %v", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var payload struct {
			WebhookType string `json:"webhook_type"`
			WebhookCode string `json:"webhook_code"`
			ItemID      string `json:"item_id"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if payload.WebhookType != "TRANSACTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		item, err := dbsql.GetItemByExternalID(r.Context(), pool, payload.ItemID)
		if err != nil {
			log.Printf("ERROR: Webhook for unknown item %s: %v", payload.ItemID, err)
			http.Error(w, "unknown item", http.StatusNotFound)
			return
		}

		result := orchestrator.SyncItem(r.Context(), item, false)
		if result.Error != "" {
			log.Printf("ERROR: Webhook-triggered sync failed for item %s: %s", item.ItemID, result.Error)
		} else {
			log.Printf("INFO: Webhook-triggered sync for item %s - %d transactions (%s)",
				item.ItemID, result.TransactionsSynced, payload.WebhookCode)
			cache.InvalidateUser(item.UserID)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.SyncSummary{
			UserID:            item.UserID,
			TotalTransactions: result.TransactionsSynced,
			ItemsSynced:       1,
			Results:           []models.ItemSyncResult{result},
		})
	}
}
