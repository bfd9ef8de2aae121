package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// snapshot is the persisted row: one opaque blob per state kind.
type snapshot struct {
	Kind      string `gorm:"primaryKey"`
	Data      []byte
	UpdatedAt time.Time
}

func (snapshot) TableName() string { return "state_snapshots" }

type meta struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (meta) TableName() string { return "state_meta" }

// SQLStore persists snapshots in a SQLite database.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the SQLite database and runs migrations.
func NewSQLStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = "super_productivity.db"
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&snapshot{}, &meta{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) LoadState(kind string) ([]byte, bool, error) {
	var row snapshot
	err := s.db.First(&row, "kind = ?", kind).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: load %s: %v", ErrUnavailable, kind, err)
	}
	return row.Data, true, nil
}

func (s *SQLStore) SaveState(kind string, data []byte) error {
	row := snapshot{Kind: kind, Data: data, UpdatedAt: time.Now()}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrUnavailable, kind, err)
	}
	return nil
}

func (s *SQLStore) SaveLastActive(t time.Time) error {
	row := meta{Key: "lastActive", Value: t.Format(time.RFC3339Nano), UpdatedAt: time.Now()}
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("%w: save lastActive: %v", ErrUnavailable, err)
	}
	return nil
}

// ensureDirForSQLite creates the parent dir for the SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
