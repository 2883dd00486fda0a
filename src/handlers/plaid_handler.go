package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	dbsql "snapshot-server/src/db/sql"
	"snapshot-server/src/plaid"
	"snapshot-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateLinkToken(plaidClient *plaid.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		linkToken, err := plaidClient.CreateLinkToken(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to create link token", http.StatusInternalServerError)
			log.Printf("ERROR: Plaid link token creation failed for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"link_token": linkToken})
	}
}

func ExchangePublicToken(plaidClient *plaid.Client, pool *pgxpool.Pool, cipher *util.TokenCipher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
			log.Printf("ERROR: Failed to decode exchange public token request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		accessToken, itemID, err := plaidClient.ExchangePublicToken(r.Context(), req.PublicToken)
		if err != nil {
			http.Error(w, "Failed to exchange public token", http.StatusInternalServerError)
			log.Printf("ERROR: Plaid public token exchange failed for user %d: %v", userID, err)
			return
		}

		// Institution details are optional; failures leave them empty.
		institutionID, institutionName := plaidClient.GetInstitution(r.Context(), accessToken)

		accounts, err := plaidClient.GetAccounts(r.Context(), accessToken)
		if err != nil {
			http.Error(w, "Failed to fetch accounts", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to fetch accounts for user %d, item %s: %v", userID, itemID, err)
			return
		}

		encryptedToken, err := cipher.Encrypt(accessToken)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to encrypt access token for user %d: %v", userID, err)
			return
		}

		itemDBID, err := dbsql.SaveItem(r.Context(), pool, userID, itemID, encryptedToken, institutionID, institutionName)
		if err != nil {
			http.Error(w, "Failed to save item", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to save item for user %d: %v", userID, err)
			return
		}

		if err := dbsql.SaveAccounts(r.Context(), pool, itemDBID, accounts); err != nil {
			http.Error(w, "Failed to save accounts", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to save accounts for user %d: %v", userID, err)
			return
		}

		log.Printf("INFO: Successfully exchanged public token for user %d, item %s (%d accounts)",
			userID, itemID, len(accounts))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"item_id":     itemID,
			"institution": institutionName,
			"accounts":    len(accounts),
		})
	}
}

func GetItems(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		items, err := dbsql.GetItemsForUser(r.Context(), pool, userID)
		if err != nil {
			http.Error(w, "Failed to retrieve items", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get items for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(items)
	}
}

func GetAccounts(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		itemDBID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid item id", http.StatusBadRequest)
			return
		}

		accounts, err := dbsql.GetAccountsForItem(r.Context(), pool, userID, itemDBID)
		if err != nil {
			http.Error(w, "Failed to retrieve accounts", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get accounts for user %d, item %d: %v", userID, itemDBID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(accounts)
	}
}

func GetTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		accountDBID, err := strconv.ParseInt(chi.URLParam(r, "account_id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid account id", http.StatusBadRequest)
			return
		}

		transactions, err := dbsql.GetTransactionsForAccount(r.Context(), pool, userID, accountDBID)
		if err != nil {
			http.Error(w, "Failed to retrieve transactions", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get transactions for user %d, account %d: %v", userID, accountDBID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(transactions)
	}
}
