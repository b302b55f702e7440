package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
	"github.com/lingomeet/lingomeet/pkg/logging"
	"github.com/lingomeet/lingomeet/pkg/meeting"
)

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// DefaultPostgresConfig returns a config with sensible default values.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		Database:        "lingomeet",
		User:            "lingomeet",
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectTimeout:  10 * time.Second,
	}
}

// ConnectionString builds a PostgreSQL connection string from the config.
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
		int(c.ConnectTimeout.Seconds()),
	)
}

// Validate checks that the config has required fields set.
func (c *PostgresConfig) Validate() error {
	if c.Host == "" {
		return lmerrors.Validation("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return lmerrors.Validation("invalid database port: %d", c.Port)
	}
	if c.Database == "" {
		return lmerrors.Validation("database name is required")
	}
	if c.User == "" {
		return lmerrors.Validation("database user is required")
	}
	if c.MaxConns < c.MinConns {
		return lmerrors.Validation("max connections (%d) must be >= min connections (%d)", c.MaxConns, c.MinConns)
	}
	return nil
}

// Connect creates a connection pool and verifies it with a ping. The caller
// owns the pool and must Close it.
func Connect(ctx context.Context, cfg *PostgresConfig) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// PostgresRepository stores meetings as JSONB snapshots with a few indexed
// columns for lookup.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewPostgresRepository wraps an existing pool.
func NewPostgresRepository(pool *pgxpool.Pool, log logging.Logger) *PostgresRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PostgresRepository{pool: pool, log: log.With(logging.F("component", "storage"))}
}

// EnsureSchema creates the meetings table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS meetings (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL DEFAULT '',
			code       TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			snapshot   JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS meetings_user_id_idx ON meetings (user_id);
		CREATE INDEX IF NOT EXISTS meetings_code_idx ON meetings (code) WHERE code <> '';
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, m meeting.Meeting) error {
	snap := m.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal meeting %s: %w", m.ID(), err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO meetings (id, user_id, code, status, updated_at, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			user_id    = EXCLUDED.user_id,
			code       = EXCLUDED.code,
			status     = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			snapshot   = EXCLUDED.snapshot
	`, snap.ID, snap.UserID, snap.Code, string(snap.Status), snap.UpdatedAt, raw)
	if err != nil {
		return fmt.Errorf("failed to save meeting %s: %w", m.ID(), err)
	}
	r.log.Debug("meeting saved", logging.F("meeting_id", m.ID()), logging.F("status", string(m.Status())))
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (meeting.Meeting, error) {
	return r.getWhere(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (meeting.Meeting, error) {
	return r.getWhere(ctx, "code = $1 AND code <> ''", code)
}

func (r *PostgresRepository) getWhere(ctx context.Context, where string, arg any) (meeting.Meeting, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, "SELECT snapshot FROM meetings WHERE "+where, arg).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return meeting.Meeting{}, lmerrors.ErrNotFound
	}
	if err != nil {
		return meeting.Meeting{}, fmt.Errorf("failed to query meeting: %w", err)
	}
	return unmarshalMeeting(raw)
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]meeting.Meeting, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT snapshot FROM meetings WHERE user_id = $1 ORDER BY updated_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var out []meeting.Meeting
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		m, err := unmarshalMeeting(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read meetings: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM meetings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return lmerrors.ErrNotFound
	}
	return nil
}

func unmarshalMeeting(raw []byte) (meeting.Meeting, error) {
	var snap meeting.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return meeting.Meeting{}, fmt.Errorf("failed to unmarshal meeting snapshot: %w", err)
	}
	return meeting.FromSnapshot(snap)
}
