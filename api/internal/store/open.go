package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Open connects to Postgres through the pgx stdlib driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// SafeDSNSummary names the target of dsn for logs. Both URL and keyword/value forms are
// accepted; the password is never part of the result.
func SafeDSNSummary(dsn string) string {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	return fmt.Sprintf("host=%s port=%d db=%s user=%s", cfg.Host, cfg.Port, cfg.Database, cfg.User)
}
