package main

import (
	"context"
	"log"
	"os"

	config "github.com/kevin-vien/web-mobile-tranning/configs"
	"github.com/kevin-vien/web-mobile-tranning/internal/db"
	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/seed"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	if err := store.Bootstrap(ctx); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	err = seed.Run(ctx, store.DB, seed.Options{
		AdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		UserPassword:  os.Getenv("SEED_USER_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	logging.Log(logging.Fields{Step: "seed", Status: "done", Message: "Seed data inserted successfully."})
}
