// Package db provides database connection and schema management.
package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a GORM connection for the given DSN. A DSN of the form
// "sqlite:<path>" opens a SQLite database (used for local development and
// tests); anything else is treated as a MySQL DSN.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db: dsn is required")
	}

	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		conn *gorm.DB
		err  error
	)
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok {
		conn, err = gorm.Open(sqlite.Open(path), cfg)
	} else {
		conn, err = gorm.Open(mysql.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	return conn, nil
}
