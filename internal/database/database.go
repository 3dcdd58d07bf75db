package database

import (
	"errors"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mahendra/quickchat/internal/models"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Connect() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		return err
	}

	d.db = db

	return nil
}

// Migrate creates the schema on an already-open connection. Used by tests
// running against SQLite.
func (d *Database) Migrate() error {
	return d.db.AutoMigrate(&models.User{}, &models.Message{})
}
