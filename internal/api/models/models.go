package models

import (
	"github.com/jon4hz/naijamap/internal/config"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/jon4hz/naijamap/internal/gravatar"
)

// User is the signed-in player as seen by handlers and templates.
type User struct {
	ID          uint
	Username    string
	Email       string
	GravatarURL string // empty if gravatar is disabled
}

// ToUser converts a database.User into the view model.
func ToUser(u *database.User, gravatarCfg *config.GravatarConfig) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		GravatarURL: gravatar.URL(u.Email, gravatarCfg),
	}
}

// SaveProgressRequest is the body of POST /save_progress.
type SaveProgressRequest struct {
	GuessedStates []string `json:"guessed_states" binding:"required"`
}
