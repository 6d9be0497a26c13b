package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/contractiq/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time checks: Store implements every persistence port.
var (
	_ domain.ConfigurationStore = (*Store)(nil)
	_ domain.FormConfigStore    = (*Store)(nil)
	_ domain.ContractRepository = (*Store)(nil)
)

// Store implements the configuration, form configuration, and contract
// persistence ports on a single SQLite database.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready store.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready store. Use this when the *sql.DB has been
// pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other
// adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = time.RFC3339

func now() string {
	return time.Now().UTC().Format(timeFormat)
}

// Load reads the tenant's configuration document. A tenant with no
// stored row yields domain.ErrConfigurationNotFound.
func (s *Store) Load(ctx context.Context, tenantID string) (map[string]any, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM tenant_configurations WHERE tenant_id = ?`, tenantID,
	).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(doc), &values); err != nil {
		return nil, fmt.Errorf("decoding configuration document: %w", err)
	}
	return values, nil
}

// Save upserts the tenant's configuration document. This is the only
// configuration write path; readers go through the registry cache.
func (s *Store) Save(ctx context.Context, tenantID string, values map[string]any) error {
	doc, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding configuration document: %w", err)
	}

	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tenant_configurations (tenant_id, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (tenant_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		tenantID, string(doc), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	return nil
}

// LoadFormConfig reads the stored form configuration document for one
// tenant + contract type pair.
func (s *Store) LoadFormConfig(ctx context.Context, tenantID, contractType string) (domain.FormConfig, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM form_configurations WHERE tenant_id = ? AND contract_type = ?`,
		tenantID, contractType,
	).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.FormConfig{}, domain.ErrFormConfigNotFound
		}
		return domain.FormConfig{}, fmt.Errorf("loading form configuration: %w", err)
	}

	var cfg domain.FormConfig
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		return domain.FormConfig{}, fmt.Errorf("decoding form configuration: %w", err)
	}
	cfg.ContractType = contractType
	return cfg, nil
}

// SaveFormConfig upserts a form configuration document.
func (s *Store) SaveFormConfig(ctx context.Context, tenantID string, cfg domain.FormConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding form configuration: %w", err)
	}

	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO form_configurations (tenant_id, contract_type, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, contract_type) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		tenantID, cfg.ContractType, string(doc), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("saving form configuration: %w", err)
	}
	return nil
}
