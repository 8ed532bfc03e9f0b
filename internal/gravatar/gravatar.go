// Package gravatar builds avatar urls for the player badge on the game page.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jon4hz/naijamap/internal/config"
	"github.com/samber/lo"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	defaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	ratings       = []string{"g", "pg", "r", "x"}
)

// URL returns the avatar url for email, or "" when gravatar is disabled or email is empty.
func URL(email string, cfg *config.GravatarConfig) string {
	if cfg == nil || !cfg.Enabled {
		return ""
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(sum[:])

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Validate checks the gravatar settings. A disabled config is always valid.
func Validate(cfg *config.GravatarConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if cfg.DefaultImage != "" && !lo.Contains(defaultImages, cfg.DefaultImage) {
		return fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !lo.Contains(ratings, cfg.Rating) {
		return fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return fmt.Errorf("gravatar size must be between 1 and 2048, got %d", cfg.Size)
	}
	return nil
}
