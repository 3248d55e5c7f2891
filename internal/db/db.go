package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = ":memory:"

// Open returns a connected GORM DB for a database URL:
//
//	sqlite:///crm_database.db    relative sqlite file
//	sqlite:////var/lib/crm.db    absolute sqlite file
//	sqlite:///:memory:           in-memory sqlite
//	postgres://user:pw@host/db   PostgreSQL (postgresql:// also accepted)
//	mysql://user:pw@tcp(host)/db MySQL; a bare go-sql-driver DSN works too
func Open(databaseURL string) (*gorm.DB, error) {
	dialector, err := Dialector(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialector.Name(), err)
	}

	if isMemorySQLite(databaseURL) {
		// Every new connection would get its own empty in-memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Dialector picks the gorm driver for a database URL.
func Dialector(databaseURL string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := sqlitePath(databaseURL)
		if path == "" {
			return nil, fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return sqlite.Open(withForeignKeys(path)), nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), nil
	case strings.HasPrefix(databaseURL, "mysql://"):
		return mysql.Open(withParseTime(strings.TrimPrefix(databaseURL, "mysql://"))), nil
	case strings.Contains(databaseURL, "@tcp("):
		return mysql.Open(withParseTime(databaseURL)), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

func sqlitePath(databaseURL string) string {
	rest := strings.TrimPrefix(databaseURL, "sqlite://")
	return strings.TrimPrefix(rest, "/")
}

func isMemorySQLite(databaseURL string) bool {
	if !strings.HasPrefix(databaseURL, "sqlite://") {
		return false
	}
	path, _, _ := strings.Cut(sqlitePath(databaseURL), "?")
	return path == memoryDSN
}

// withForeignKeys turns on foreign key enforcement for every sqlite connection.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_pragma=foreign_keys(1)"
	}
	return dsn + "?_pragma=foreign_keys(1)"
}

// withParseTime makes the MySQL driver return DATETIME columns as time.Time.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=True"
	}
	return dsn + "?parseTime=True"
}
