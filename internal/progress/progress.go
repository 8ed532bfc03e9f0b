// Package progress holds the per-user game state: the ordered list of guessed regions
// and the high score.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/naijamap/internal/cache"
	"github.com/jon4hz/naijamap/internal/database"
)

// Store reads and writes progress records.
type Store struct {
	db    database.DB
	cache *cache.ProgressCache
}

// New creates a progress store. The cache may be nil.
// A cache that is not shared between processes is ignored: the reset command writes
// from its own process and the server must see that write.
func New(db database.DB, c *cache.ProgressCache) *Store {
	if c != nil && !c.Shared() {
		log.Debug("progress cache is process-local, reading progress from the database")
		c = nil
	}
	return &Store{
		db:    db,
		cache: c,
	}
}

// CreateFor creates an empty progress record for the user.
// Calling it for a user that already has a record returns that record.
func (s *Store) CreateFor(ctx context.Context, userID uint) (*database.Progress, error) {
	p, err := s.db.CreateProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}
	s.cache.Set(ctx, p)
	return p, nil
}

// GetFor returns the progress of the user, creating an empty record if there is none.
func (s *Store) GetFor(ctx context.Context, userID uint) (*database.Progress, error) {
	if p, ok := s.cache.Get(ctx, userID); ok {
		return p, nil
	}

	p, err := s.db.GetProgressByUserID(ctx, userID)
	if err == nil {
		s.cache.Set(ctx, p)
		return p, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	log.Warn("progress record missing, creating it", "user_id", userID)
	return s.CreateFor(ctx, userID)
}

// SaveRegions replaces the guessed regions of the user.
// A missing progress record is created first.
func (s *Store) SaveRegions(ctx context.Context, userID uint, regions []string) error {
	encoded, err := Encode(regions)
	if err != nil {
		return err
	}

	if err := s.save(ctx, userID, encoded); err != nil {
		s.cache.Invalidate(ctx, userID)
		return err
	}
	s.refresh(ctx, userID)
	return nil
}

func (s *Store) save(ctx context.Context, userID uint, encoded string) error {
	err := s.db.UpdateProgressGuessedStates(ctx, userID, encoded)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	log.Warn("saving progress without a record, creating it", "user_id", userID)
	if _, err := s.db.CreateProgress(ctx, userID); err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	if err := s.db.UpdateProgressGuessedStates(ctx, userID, encoded); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// refresh puts the committed record into the cache so a read that started before the
// save cannot leave the old list behind.
func (s *Store) refresh(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	p, err := s.db.GetProgressByUserID(ctx, userID)
	if err != nil {
		log.Warn("failed to refresh cached progress", "user_id", userID, "error", err)
		s.cache.Invalidate(ctx, userID)
		return
	}
	s.cache.Set(ctx, p)
}

// Reset clears the guessed regions of the user. The high score is kept.
func (s *Store) Reset(ctx context.Context, userID uint) error {
	return s.SaveRegions(ctx, userID, []string{})
}

// Regions decodes the guessed regions of a progress record.
func Regions(p *database.Progress) ([]string, error) {
	if p == nil {
		return []string{}, nil
	}
	return Decode(p.GuessedStates)
}

// Encode serializes a region list. A nil list is stored as an empty array.
func Encode(regions []string) (string, error) {
	if regions == nil {
		regions = []string{}
	}
	data, err := json.Marshal(regions)
	if err != nil {
		return "", fmt.Errorf("failed to encode regions: %w", err)
	}
	return string(data), nil
}

// Decode parses a serialized region list. Empty text decodes to an empty list.
func Decode(text string) ([]string, error) {
	regions := []string{}
	if text == "" {
		return regions, nil
	}
	if err := json.Unmarshal([]byte(text), &regions); err != nil {
		return nil, fmt.Errorf("failed to decode regions: %w", err)
	}
	if regions == nil {
		// "null"
		regions = []string{}
	}
	return regions, nil
}
