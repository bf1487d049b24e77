// Package identity provides the persistent backing store for anonymous
// identifiers, sessions, and recorded telemetry events. It speaks
// SQLite locally or Turso (libsql) remotely. Every column it writes is
// already anonymized; raw user identifiers never reach this layer.
package identity

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/domain/telemetry"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/internal/infrastructure/observability/logging"
	"github.com/BalaShankar9/CarpoolNetwork-sub010/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const queryTimeout = 5 * time.Second

// Store wraps the database connection used for identity persistence.
type Store struct {
	Conn     *sql.DB
	UseTurso bool
	logger   *logging.ChanneledLogger
}

// Config selects the backing database.
type Config struct {
	SQLitePath     string
	TursoDatabase  string
	TursoAuthToken string
}

// ConfigFromEnv builds a store config from the process configuration.
func ConfigFromEnv() Config {
	return Config{
		SQLitePath:     config.SQLitePath,
		TursoDatabase:  config.TursoDatabase,
		TursoAuthToken: config.TursoAuthToken,
	}
}

// Open connects to Turso when configured, otherwise local SQLite, and
// ensures the schema exists. Callers treat a returned error as a
// storage-degraded condition, not a fatal one.
func Open(cfg Config, logger *logging.ChanneledLogger) (*Store, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if cfg.TursoDatabase != "" && cfg.TursoAuthToken != "" {
		connStr := cfg.TursoDatabase + "?authToken=" + cfg.TursoAuthToken
		conn, err = sql.Open("libsql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open turso database %s: %w", cfg.TursoDatabase, err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to reach turso database %s: %w", cfg.TursoDatabase, err)
		}
		useTurso = true
	} else {
		dbDir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection failed: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite ping failed: %w", err)
		}
	}

	conn.SetMaxOpenConns(config.DBMaxOpenConns)
	conn.SetMaxIdleConns(config.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	store := &Store{Conn: conn, UseTurso: useTurso, logger: logger}
	if err := store.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	schema := []string{
		`CREATE TABLE IF NOT EXISTS identities (
			client_id TEXT PRIMARY KEY,
			anonymous_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			last_activity TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_client ON sessions (client_id, last_activity)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			anonymous_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			page_path TEXT NOT NULL,
			flow_stage TEXT NOT NULL,
			user_role TEXT NOT NULL,
			device_type TEXT NOT NULL,
			environment TEXT NOT NULL,
			properties TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_created ON events (event, created_at)`,
	}
	for _, stmt := range schema {
		if _, err := s.Conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// GetAnonymousID loads the persisted anonymous id for a client, if any.
func (s *Store) GetAnonymousID(clientID string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var anonymousID string
	err := s.Conn.QueryRowContext(ctx,
		`SELECT anonymous_id FROM identities WHERE client_id = ?`, clientID).Scan(&anonymousID)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.logger.Database().Error("Failed to load anonymous id", "clientId", clientID, "error", err.Error())
		return "", false
	}
	return anonymousID, true
}

// SaveAnonymousID persists the anonymous id for a client, replacing any
// previous value (identity reset rotates the stored id).
func (s *Store) SaveAnonymousID(clientID, anonymousID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.Conn.ExecContext(ctx,
		`INSERT INTO identities (client_id, anonymous_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(client_id) DO UPDATE SET anonymous_id = excluded.anonymous_id`,
		clientID, anonymousID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save anonymous id: %w", err)
	}
	return nil
}

// LoadSession returns the most recent session for a client.
func (s *Store) LoadSession(clientID string) (*telemetry.Session, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	row := s.Conn.QueryRowContext(ctx,
		`SELECT id, client_id, created_at, last_activity FROM sessions
		 WHERE client_id = ? ORDER BY last_activity DESC LIMIT 1`, clientID)

	var sess telemetry.Session
	err := row.Scan(&sess.ID, &sess.ClientID, &sess.CreatedAt, &sess.LastActivity)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.Database().Error("Failed to load session", "clientId", clientID, "error", err.Error())
		return nil, false
	}
	return &sess, true
}

// SaveSession inserts or refreshes a session row.
func (s *Store) SaveSession(sess *telemetry.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.Conn.ExecContext(ctx,
		`INSERT INTO sessions (id, client_id, created_at, last_activity) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET last_activity = excluded.last_activity`,
		sess.ID, sess.ClientID, sess.CreatedAt, sess.LastActivity)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSessions removes every persisted session for a client. Used on
// identity reset.
func (s *Store) DeleteSessions(clientID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.Conn.ExecContext(ctx, `DELETE FROM sessions WHERE client_id = ?`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// InsertEvent records an emitted event. Properties arrive already
// bucketed and serialized by the sink.
func (s *Store) InsertEvent(id, event, anonymousID, sessionID, pagePath, flowStage, userRole, deviceType, environment, properties string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := s.Conn.ExecContext(ctx,
		`INSERT INTO events (id, event, anonymous_id, session_id, page_path, flow_stage, user_role, device_type, environment, properties, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, event, anonymousID, sessionID, pagePath, flowStage, userRole, deviceType, environment, properties, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// EventCounts returns per-event totals from the event log.
func (s *Store) EventCounts(ctx context.Context) (map[string]int, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.Conn.QueryContext(queryCtx, `SELECT event, COUNT(*) FROM events GROUP BY event`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var event string
		var count int
		if err := rows.Scan(&event, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[event] = count
	}
	return counts, rows.Err()
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.Conn.Close()
}
