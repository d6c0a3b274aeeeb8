package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

type Config struct {
	Driver   string // "postgres" or "sqlite3"
	URL      string // Full database URL (postgres) or file path (sqlite3)
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConnection opens the record store. Production runs against PostgreSQL;
// the sqlite3 driver backs local development and the test suite with the
// same repositories.
func NewConnection(config Config) (*DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = "postgres"
	}

	var dsn string
	switch driver {
	case "sqlite3":
		dsn = config.URL
		if dsn == "" {
			dsn = "eventflow.db"
		}
	default:
		// Use full URL if available, otherwise construct from components
		if config.URL != "" {
			dsn = config.URL
		} else {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite handles one writer; a larger pool only buys lock errors,
		// and in-memory databases vanish outside their single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations runs all pending database migrations
func (db *DB) RunMigrations() error {
	migrator := NewMigrator(db.DB)
	return migrator.RunMigrations()
}

// GetMigrationStatus shows the current migration status
func (db *DB) GetMigrationStatus() error {
	migrator := NewMigrator(db.DB)
	return migrator.GetMigrationStatus()
}
