package database

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/atelierhq/atelier/database/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ErrDuplicateName is returned when a unique name (username or category
// name) is already taken.
var ErrDuplicateName = errors.New("name already taken")

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection and performs migrations.
func New(dbpath string) (*Client, error) {
	if err := os.MkdirAll(dbpath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path.Join(dbpath, "atelier.db")+"?_pragma=foreign_keys(1)"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Painting{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Client{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation reports whether err is a unique constraint violation.
// The sqlite driver does not translate these to gorm.ErrDuplicatedKey, so
// the driver error text is checked as well.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
