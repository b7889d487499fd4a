package models

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(
		&Role{},
		&AccessToken{},
		&Collection{},
		&Entity{},
		&Document{},
		&DocumentPage{},
		&DocumentRecord{},
		&Reference{},
	)
	if err != nil {
		t.Fatal(err)
	}

	return db
}

func createTestCollection(t *testing.T, db *gorm.DB) *Collection {
	t.Helper()

	collection, err := CreateCollection(db, "Test Leaks", "test-leaks", false, nil)
	if err != nil {
		t.Fatal(err)
	}

	return collection
}
