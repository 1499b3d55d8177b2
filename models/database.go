package models

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"food-ordering/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

const connectRetryDelay = 10 * time.Second

// InitDB connects to Postgres and keeps retrying on a fixed delay until it
// succeeds. The database is the only hard dependency of the process.
func InitDB() {
	dsn := buildDSN()

	for {
		pool, err := connect(dsn)
		if err == nil {
			DB = pool
			log.Println("Database connected successfully")
			return
		}

		log.Printf("Database connection failed: %v", err)
		log.Printf("Retrying in %s...", connectRetryDelay)
		time.Sleep(connectRetryDelay)
	}
}

func connect(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal("Failed to parse DB config:", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func buildDSN() string {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		log.Println("Using DATABASE_URL for connection")
		return databaseURL
	}

	cfg := config.AppConfig
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode,
	)
}

func CloseDB() {
	if DB != nil {
		DB.Close()
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
