// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS site_analytics (
	date             DATE PRIMARY KEY,
	pageviews        INTEGER NOT NULL DEFAULT 0,
	unique_visitors  INTEGER NOT NULL DEFAULT 0,
	generations      INTEGER NOT NULL DEFAULT 0,
	downloads        INTEGER NOT NULL DEFAULT 0,
	copies           INTEGER NOT NULL DEFAULT 0,
	copy_failures    INTEGER NOT NULL DEFAULT 0,
	referrer_sources JSONB NOT NULL DEFAULT '{}'::jsonb,
	top_pages        JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type Database struct {
	Pool *pgxpool.Pool
}

// DailyUsage is one row of site_analytics.
type DailyUsage struct {
	Date           time.Time `json:"date"`
	Pageviews      int       `json:"pageviews"`
	UniqueVisitors int       `json:"unique_visitors"`
	Generations    int       `json:"generations"`
	Downloads      int       `json:"downloads"`
	Copies         int       `json:"copies"`
	CopyFailures   int       `json:"copy_failures"`
}

func Connect(databaseURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 2 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Info("Database connected successfully")
	return &Database{Pool: pool}, nil
}

func (d *Database) Close() {
	if d.Pool != nil {
		d.Pool.Close()
		slog.Info("Database connection closed")
	}
}

func (d *Database) HealthCheck(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// RecentUsage returns up to limit days of aggregates, newest first.
func (d *Database) RecentUsage(ctx context.Context, limit int) ([]DailyUsage, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT date, pageviews, unique_visitors, generations, downloads, copies, copy_failures
		FROM site_analytics
		ORDER BY date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var out []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Pageviews, &u.UniqueVisitors, &u.Generations, &u.Downloads, &u.Copies, &u.CopyFailures); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
