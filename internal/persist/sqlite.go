package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// item is one slot of the durable store.
type item struct {
	Slot      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (item) TableName() string { return "local_storage" }

// SQLStorage is a Storage backed by a SQLite file.
type SQLStorage struct {
	db *gorm.DB
}

// OpenSQLStorage opens (creating if needed) the SQLite file at path.
func OpenSQLStorage(path string) (*SQLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&item{}); err != nil {
		return nil, fmt.Errorf("auto migrate local storage: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// GetItem implements Storage.
func (s *SQLStorage) GetItem(key string) (string, bool, error) {
	var it item
	err := s.db.Where("slot = ?", key).Take(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %s: %w", key, err)
	}
	return it.Value, true, nil
}

// SetItem implements Storage. Existing values are overwritten.
func (s *SQLStorage) SetItem(key, value string) error {
	it := item{Slot: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&it).Error
	if err != nil {
		return fmt.Errorf("set item %s: %w", key, err)
	}
	return nil
}

// RemoveItem implements Storage.
func (s *SQLStorage) RemoveItem(key string) error {
	if err := s.db.Where("slot = ?", key).Delete(&item{}).Error; err != nil {
		return fmt.Errorf("remove item %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
