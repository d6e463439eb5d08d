// Package main applies the embedded schema migrations to PostgreSQL and ClickHouse.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"omnirep/internal/config"
	"omnirep/internal/storage/migrations"
	pgstore "omnirep/internal/storage/postgres"
)

func main() {
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags)

	if err := config.LoadEnvFile(".env"); err != nil {
		logger.Fatal(err)
	}

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")
	flag.Parse()

	if *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn or --clickhouse-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		pool.Close()
		if err != nil {
			logger.Fatalf("Postgres migrations failed: %v", err)
		}
		if len(applied) == 0 {
			logger.Println("Postgres schema is up to date")
		}
		for _, v := range applied {
			logger.Printf("Applied postgres migration %s", v)
		}
	}

	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse migrations failed: %v", err)
		}
		conn.Close()
		logger.Println("ClickHouse schema is up to date")
	}
}
