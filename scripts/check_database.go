//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"b2b-quote/internal/config"
	"b2b-quote/internal/database"

	"github.com/joho/godotenv"
)

// checkDatabase connects with the configured credentials and reports the applied schema version.
// Run with: go run scripts/check_database.go
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	var version int64
	err = pool.QueryRow(ctx, "SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied").Scan(&version)
	if err != nil {
		fmt.Printf("Connected to database %s (no migrations applied yet)\n", dbName)
		return
	}

	fmt.Printf("Successfully connected to database %s at schema version %d\n", dbName, version)
}
