package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"snapshot-server/src/db"
	dbsql "snapshot-server/src/db/sql"
	"snapshot-server/src/models"
	"snapshot-server/src/plaid"
	"snapshot-server/src/recurring"
	"snapshot-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

type recurringResponse struct {
	UserID           int64                    `json:"user_id"`
	Type             string                   `json:"type"`
	Streams          []models.RecurringStream `json:"recurring_transactions"`
	TotalStreams     int                      `json:"total_streams"`
	DetectionMethods map[string]int           `json:"detection_methods"`
}

// GetRecurring combines the aggregator's recurring stream
// classification with local detection over the mirrored transactions.
func GetRecurring(plaidClient *plaid.Client, pool *pgxpool.Pool, cache *db.Cache, cipher *util.TokenCipher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		direction := r.URL.Query().Get("type")
		if direction != "" && direction != models.DirectionInflow && direction != models.DirectionOutflow {
			http.Error(w, `type must be either "inflow" or "outflow"`, http.StatusBadRequest)
			return
		}

		if cached, ok := cache.GetRecurring(userID, direction); ok {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}

		items, err := dbsql.GetItemsForUser(r.Context(), pool, userID)
		if err != nil {
			http.Error(w, "Failed to retrieve items", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get items for user %d: %v", userID, err)
			return
		}

		// The aggregator's classifier is best-effort: items whose
		// institution lacks the endpoint contribute nothing.
		var external []models.RecurringStream
		for _, item := range items {
			accessToken, err := cipher.Decrypt(item.AccessToken)
			if err != nil {
				log.Printf("ERROR: Failed to decrypt access token for item %s: %v", item.ItemID, err)
				continue
			}
			streams, err := plaidClient.GetRecurringStreams(r.Context(), accessToken)
			if err != nil {
				log.Printf("WARN: Recurring stream fetch failed for item %s: %v", item.ItemID, err)
				continue
			}
			external = append(external, streams...)
		}

		transactions, err := dbsql.GetTransactionsForUser(r.Context(), pool, userID)
		if err != nil {
			http.Error(w, "Failed to retrieve transactions", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get transactions for user %d: %v", userID, err)
			return
		}

		custom := recurring.Detect(transactions, recurring.DefaultOptions())
		merged := recurring.Merge(external, custom, direction)

		responseType := direction
		if responseType == "" {
			responseType = "all"
		}
		response := recurringResponse{
			UserID:       userID,
			Type:         responseType,
			Streams:      merged.Streams,
			TotalStreams: len(merged.Streams),
			DetectionMethods: map[string]int{
				"plaid_api":       merged.PlaidCount,
				"custom_detector": merged.CustomCount,
			},
		}
		cache.SetRecurring(userID, direction, response)

		log.Printf("INFO: Recurring transactions retrieved for user %d - %d streams (type=%s)",
			userID, response.TotalStreams, responseType)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
