// Package storage persists the last successfully fetched session lists so the
// CLI can answer offline queries without the backend.
package storage

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shotcraft/internal/api"
)

// SessionRecord is one cached saved-session row.
type SessionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID string `gorm:"index:idx_project_position"`
	// Position preserves server display order within a project.
	Position  int `gorm:"index:idx_project_position"`
	SessionID string
	Name      string
	Type      string
	CreatedAt string
	FetchedAt time.Time
}

// Cache is a sqlite-backed mirror of the session lists.
type Cache struct {
	db *gorm.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}
	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// ReplaceProject atomically replaces the cached list for one project.
func (c *Cache) ReplaceProject(projectID string, sessions []api.Session) error {
	now := time.Now()
	records := make([]SessionRecord, len(sessions))
	for i, s := range sessions {
		records[i] = SessionRecord{
			ProjectID: projectID,
			Position:  i,
			SessionID: s.ID,
			Name:      s.Name,
			Type:      s.Type,
			CreatedAt: s.CreatedAt,
			FetchedAt: now,
		}
	}

	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&SessionRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
}

// ListProject returns the cached list for one project in display order, with
// the time it was fetched. ok is false when nothing is cached.
func (c *Cache) ListProject(projectID string) (sessions []api.Session, fetchedAt time.Time, ok bool, err error) {
	var records []SessionRecord
	res := c.db.Where("project_id = ?", projectID).Order("position asc").Find(&records)
	if res.Error != nil {
		return nil, time.Time{}, false, res.Error
	}
	if len(records) == 0 {
		return nil, time.Time{}, false, nil
	}

	sessions = make([]api.Session, len(records))
	for i, r := range records {
		sessions[i] = api.Session{
			ID:        r.SessionID,
			Name:      r.Name,
			Type:      r.Type,
			CreatedAt: r.CreatedAt,
		}
	}
	return sessions, records[0].FetchedAt, true, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
