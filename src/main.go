package main

import (
	"context"
	"log"
	"net/http"

	"snapshot-server/src/api"
	"snapshot-server/src/config"
	"snapshot-server/src/db"
	"snapshot-server/src/plaid"
	"snapshot-server/src/sync"
	"snapshot-server/src/util"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	cache, err := db.NewCache()
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	cipher, err := util.NewTokenCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize token cipher: %v", err)
	}

	plaidClient := plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	orchestrator := sync.NewOrchestrator(plaidClient, sync.NewStore(pool), cipher, cfg.Sync)

	router := api.NewRouter(api.Deps{
		Pool:         pool,
		Cache:        cache,
		Cipher:       cipher,
		PlaidClient:  plaidClient,
		Orchestrator: orchestrator,
		JWTSecret:    cfg.JWTSecret,
	})

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
