package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// EmptyGuessedStates is the serialized form of an empty region list.
const EmptyGuessedStates = "[]"

// Progress is the saved game state of a single user.
type Progress struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`
	// GuessedStates is a JSON array of region names in the order they were guessed.
	GuessedStates string `gorm:"type:text;not null"`
	// HighScore is kept for the game client but nothing updates it yet.
	HighScore int `gorm:"not null;default:0"`
}

// CreateProgress inserts an empty progress record for the user.
// If a record already exists it is returned instead.
func (c *Client) CreateProgress(ctx context.Context, userID uint) (*Progress, error) {
	progress := Progress{
		UserID:        userID,
		GuessedStates: EmptyGuessedStates,
	}
	err := c.db.WithContext(ctx).Create(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return c.GetProgressByUserID(ctx, userID)
	}
	log.Error("failed to create progress", "error", err, "user_id", userID)
	return nil, err
}

func (c *Client) GetProgressByUserID(ctx context.Context, userID uint) (*Progress, error) {
	var progress Progress
	if err := c.db.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if !isNotFound(err) {
			log.Error("failed to get progress by user ID", "error", err)
		}
		return nil, err
	}
	return &progress, nil
}

// UpdateProgressGuessedStates overwrites the serialized region list of the user.
// It returns ErrNotFound when the user has no progress record.
func (c *Client) UpdateProgressGuessedStates(ctx context.Context, userID uint, guessedStates string) error {
	result := c.db.WithContext(ctx).
		Model(&Progress{}).
		Where("user_id = ?", userID).
		Update("guessed_states", guessedStates)
	if result.Error != nil {
		log.Error("failed to update guessed states", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	// mysql reports zero affected rows when the value is unchanged
	var count int64
	if err := c.db.WithContext(ctx).Model(&Progress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
