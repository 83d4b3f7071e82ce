package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"blog/internal/config"
)

//go:embed schema_postgres.sql schema_sqlite.sql
var schemaFS embed.FS

// Open connects to the configured store and applies the embedded
// schema. The schema uses IF NOT EXISTS throughout, so applying it on
// every start is idempotent. Any failure here is a setup error; the
// caller is expected to treat it as fatal.
func Open(cfg config.DB) (*sql.DB, error) {
	var dsn, schema string
	switch cfg.Driver {
	case "postgres":
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		schema = "schema_postgres.sql"
	case "sqlite3":
		// _foreign_keys=on so the comment cascade actually fires.
		dsn = cfg.Path + "?_foreign_keys=on"
		schema = "schema_sqlite.sql"
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db, schema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB, schema string) error {
	sqlBytes, err := fs.ReadFile(schemaFS, schema)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
