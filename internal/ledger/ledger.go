// Package ledger stores battle results in SQLite through gorm.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/hexbattle/internal/game"
)

// BattleRecord is one finished battle.
type BattleRecord struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	Batch          string    `gorm:"index;size:36" json:"batch"`
	Scenario       string    `json:"scenario"`
	Seed           int64     `json:"seed"`
	Outcome        string    `gorm:"index" json:"outcome"`
	Reason         string    `json:"reason"`
	Turns          int       `json:"turns"`
	LeftTotal      int       `json:"leftTotal"`
	LeftSurvivors  int       `json:"leftSurvivors"`
	RightTotal     int       `json:"rightTotal"`
	RightSurvivors int       `json:"rightSurvivors"`
	Capturer       string    `json:"capturer"`
}

// FromResult fills a record from a battle result.
func FromResult(batch, scenario string, seed int64, r game.BattleOutcomeReason) BattleRecord {
	return BattleRecord{
		Batch:          batch,
		Scenario:       scenario,
		Seed:           seed,
		Outcome:        r.Outcome.String(),
		Reason:         r.Description,
		Turns:          r.Turn,
		LeftTotal:      r.LeftTotal,
		LeftSurvivors:  r.LeftSurvivors,
		RightTotal:     r.RightTotal,
		RightSurvivors: r.RightSurvivors,
		Capturer:       r.Capturer,
	}
}

// Store wraps the ledger database.
type Store struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Open connects to the SQLite file at path and migrates the schema.
// An empty path opens a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if path == "" {
		dsn = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if path == "" {
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
		log.Info().Msg("Using in-memory ledger")
	} else {
		log.Info().Str("path", path).Msg("Using SQLite ledger")
	}

	if err := db.AutoMigrate(&BattleRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return &Store{DB: db, Logger: log}, nil
}

// NewBatchID returns an identifier grouping the records of one run.
func NewBatchID() string {
	return uuid.NewString()
}

// Record inserts rec and sets its ID.
func (s *Store) Record(ctx context.Context, rec *BattleRecord) error {
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record battle: %w", err)
	}
	s.Logger.Debug().Uint("id", rec.ID).Str("batch", rec.Batch).Str("outcome", rec.Outcome).Msg("Recorded battle")
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]BattleRecord, error) {
	var out []BattleRecord
	err := s.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// ByBatch returns a batch's records in insertion order.
func (s *Store) ByBatch(ctx context.Context, batch string) ([]BattleRecord, error) {
	var out []BattleRecord
	err := s.DB.WithContext(ctx).Where("batch = ?", batch).Order("id").Find(&out).Error
	return out, err
}

// Tally counts records per outcome.
func (s *Store) Tally(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Outcome string
		N       int64
	}
	err := s.DB.WithContext(ctx).Model(&BattleRecord{}).
		Select("outcome, count(*) as n").
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Outcome] = r.N
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
