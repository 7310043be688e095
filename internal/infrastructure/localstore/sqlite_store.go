package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// StoreRecord is one key of the SQLite-backed store
type StoreRecord struct {
	Key       string `gorm:"column:store_key;primaryKey;size:255"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (StoreRecord) TableName() string {
	return "local_store_records"
}

// SQLiteStore implements DurableStore on an embedded SQLite file through GORM
type SQLiteStore struct {
	db        *gorm.DB
	keyPrefix string
}

// OpenSQLiteStore opens (creating if needed) the SQLite file at path and migrates the schema.
// Use ":memory:" for an ephemeral database.
func OpenSQLiteStore(path, namespace string, log gormlogger.Interface) (*SQLiteStore, error) {
	if log == nil {
		log = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite store: %w", err)
	}
	return NewSQLiteStore(db, namespace)
}

// NewSQLiteStore creates a store on an existing GORM connection
func NewSQLiteStore(db *gorm.DB, namespace string) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&StoreRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate SQLite store: %w", err)
	}
	return &SQLiteStore{
		db:        db,
		keyPrefix: prefixFor(namespace),
	}, nil
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var record StoreRecord
	err := s.db.WithContext(ctx).Where("store_key = ?", s.keyPrefix+key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrStoreKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q from SQLite: %w", key, err)
	}
	return record.Value, nil
}

// Set upserts the value stored under key
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	record := StoreRecord{
		Key:       s.keyPrefix + key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write %q to SQLite: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Where("store_key = ?", s.keyPrefix+key).Delete(&StoreRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %q from SQLite: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure SQLiteStore implements DurableStore
var _ shared.DurableStore = (*SQLiteStore)(nil)
