package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const createPlayerStatsTable = `
	CREATE TABLE IF NOT EXISTS player_stats (
		player     TEXT PRIMARY KEY,
		stats      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresStore keeps player records in a single two-column table
type PostgresStore struct {
	conn *sql.DB
}

// NewPostgresStore opens the database, verifies the connection and ensures the
// player_stats table exists
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ps := &PostgresStore{conn: db}
	if err := ps.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return ps, nil
}

// EnsureSchema creates the player_stats table if it is missing
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := ps.conn.ExecContext(ctx, createPlayerStatsTable); err != nil {
		return fmt.Errorf("creating player_stats table: %w", err)
	}
	return nil
}

// PutPlayer upserts the player's encoded record
func (ps *PostgresStore) PutPlayer(ctx context.Context, rec *PlayerStatRecord) error {
	value, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO player_stats (player, stats, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (player) DO UPDATE SET stats = EXCLUDED.stats, updated_at = NOW()
	`
	if _, err := ps.conn.ExecContext(ctx, query, rec.Player, value); err != nil {
		return fmt.Errorf("upserting %s: %w", rec.Player, err)
	}
	return nil
}

// PlayerNames lists every stored player
func (ps *PostgresStore) PlayerNames(ctx context.Context) ([]string, error) {
	rows, err := ps.conn.QueryContext(ctx, `SELECT player FROM player_stats`)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetPlayer fetches one record by exact name
func (ps *PostgresStore) GetPlayer(ctx context.Context, name string) (*PlayerStatRecord, error) {
	var value string
	err := ps.conn.QueryRowContext(ctx, `SELECT stats FROM player_stats WHERE player = $1`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	return DecodeRecord(name, value)
}

// HealthCheck performs a health check on the database
func (ps *PostgresStore) HealthCheck(ctx context.Context) error {
	return ps.conn.PingContext(ctx)
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	if ps.conn != nil {
		return ps.conn.Close()
	}
	return nil
}
