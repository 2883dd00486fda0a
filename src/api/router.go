package api

import (
	"net/http"

	"snapshot-server/src/db"
	"snapshot-server/src/handlers"
	"snapshot-server/src/middleware"
	"snapshot-server/src/plaid"
	"snapshot-server/src/sync"
	"snapshot-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Deps struct {
	Pool         *pgxpool.Pool
	Cache        *db.Cache
	Cipher       *util.TokenCipher
	PlaidClient  *plaid.Client
	Orchestrator *sync.Orchestrator
	JWTSecret    string
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", handlers.Register(deps.Pool, deps.JWTSecret))
		r.Post("/login", handlers.Login(deps.Pool, deps.JWTSecret))
		r.Post("/plaid/webhook", handlers.PlaidWebhook(deps.PlaidClient, deps.Orchestrator, deps.Pool, deps.Cache))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(deps.JWTSecret)).Group(func(r chi.Router) {
			// Linking
			r.Post("/plaid/create-link-token", handlers.CreateLinkToken(deps.PlaidClient))
			r.Post("/plaid/exchange-public-token", handlers.ExchangePublicToken(deps.PlaidClient, deps.Pool, deps.Cipher))

			// Mirror
			r.Get("/plaid/items", handlers.GetItems(deps.Pool))
			r.Get("/plaid/accounts/{item_id}", handlers.GetAccounts(deps.Pool))
			r.Get("/plaid/transactions/{account_id}", handlers.GetTransactions(deps.Pool))
			r.Post("/plaid/sync", handlers.SyncTransactions(deps.Orchestrator, deps.Pool, deps.Cache))

			// Derived views
			r.Get("/recurring", handlers.GetRecurring(deps.PlaidClient, deps.Pool, deps.Cache, deps.Cipher))
			r.Get("/balances/summary", handlers.GetBalanceSummary(deps.PlaidClient, deps.Pool, deps.Cache, deps.Cipher))
		})
	})

	return r
}
