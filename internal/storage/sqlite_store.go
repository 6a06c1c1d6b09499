package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type entry struct {
	Name      string `gorm:"primaryKey;column:name"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "local_storage" }

// SQLiteStore is a Store backed by a single SQLite table.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage %s: %w", path, err)
	}
	return NewSQLiteStore(db)
}

// NewSQLiteStore creates the storage table if needed.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local storage: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var e entry
	res := s.db.Where("name = ?", key).Limit(1).Find(&e)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return []byte(e.Value), true, nil
}

// Set inserts or replaces the value under key.
func (s *SQLiteStore) Set(key string, value []byte) error {
	e := entry{Name: key, Value: string(value), UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	return s.db.Where("name = ?", key).Delete(&entry{}).Error
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
