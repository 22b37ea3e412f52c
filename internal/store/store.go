// Package store persists loaded trips and their detected stay clusters
// to Postgres. Persistence is optional; the binary runs without it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"trip-replay/internal/detect"
	"trip-replay/internal/trip"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// EnsureSchema creates the trips and stay_clusters tables if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			point_count INT NOT NULL,
			stop_count  INT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			ended_at    TIMESTAMPTZ NOT NULL,
			loaded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS stay_clusters (
			id          BIGSERIAL PRIMARY KEY,
			trip_id     BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
			first_idx   INT NOT NULL,
			last_idx    INT NOT NULL,
			anchor_lat  DOUBLE PRECISION NOT NULL,
			anchor_lon  DOUBLE PRECISION NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			ended_at    TIMESTAMPTZ NOT NULL,
			point_count INT NOT NULL
		)`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveTrip inserts the classified trip and its stay clusters in one
// transaction and returns the trip row id.
func SaveTrip(ctx context.Context, db *sql.DB, name string, points []trip.Point, clusters []detect.Cluster) (int64, error) {
	if len(points) == 0 {
		return 0, fmt.Errorf("save trip: no points")
	}
	stops := 0
	for _, p := range points {
		if p.Stop {
			stops++
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save trip: %w", err)
	}
	defer tx.Rollback()

	var tripID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO trips (name, point_count, stop_count, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		name, len(points), stops, points[0].Time, points[len(points)-1].Time,
	).Scan(&tripID)
	if err != nil {
		return 0, fmt.Errorf("insert trip: %w", err)
	}

	for _, c := range clusters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stay_clusters (trip_id, first_idx, last_idx, anchor_lat, anchor_lon, started_at, ended_at, point_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			tripID, c.First, c.Last, c.AnchorLat, c.AnchorLon, c.Start, c.End, c.Points,
		); err != nil {
			return 0, fmt.Errorf("insert stay cluster: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save trip: %w", err)
	}
	return tripID, nil
}
