package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"snapshot-server/src/balance"
	"snapshot-server/src/db"
	dbsql "snapshot-server/src/db/sql"
	"snapshot-server/src/models"
	"snapshot-server/src/plaid"
	"snapshot-server/src/util"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GetBalanceSummary fetches fresh balances from the aggregator for every
// linked item and folds them into the cash snapshot. Items whose fetch
// fails are skipped, not fatal.
func GetBalanceSummary(plaidClient *plaid.Client, pool *pgxpool.Pool, cache *db.Cache, cipher *util.TokenCipher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		if cached, ok := cache.GetBalanceSummary(userID); ok {
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
		if len(items) == 0 {
			http.Error(w, "No linked accounts found for user", http.StatusNotFound)
			return
		}

		asOf := time.Now().UTC()
		var allAccounts []models.FeedAccount

		for _, item := range items {
			accessToken, err := cipher.Decrypt(item.AccessToken)
			if err != nil {
				log.Printf("ERROR: Failed to decrypt access token for item %s: %v", item.ItemID, err)
				continue
			}

			accounts, err := plaidClient.GetAccountBalances(r.Context(), accessToken)
			if err != nil {
				log.Printf("ERROR: Failed to fetch balances for item %s: %v", item.ItemID, err)
				continue
			}

			if err := dbsql.SaveAccountBalances(r.Context(), pool, userID, accounts, asOf); err != nil {
				log.Printf("ERROR: Failed to save balances for item %s: %v", item.ItemID, err)
			}

			allAccounts = append(allAccounts, accounts...)
		}

		summary := balance.Summarize(allAccounts, asOf)
		response := map[string]interface{}{
			"user_id":                 userID,
			"chequing_total":          summary.ChequingTotal,
			"savings_total":           summary.SavingsTotal,
			"credit_cards_total_owed": summary.CreditCardsTotalOwed,
			"net_cash":                summary.NetCash,
			"as_of":                   summary.AsOf,
			"account_breakdown":       summary.Breakdown,
		}
		cache.SetBalanceSummary(userID, response)

		log.Printf("INFO: Balance summary generated for user %d - %d accounts, net cash %s",
			userID, len(allAccounts), summary.NetCash.StringFixed(2))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
