package gravatar

import (
	"testing"

	"github.com/jon4hz/naijamap/internal/config"
	"github.com/stretchr/testify/assert"
)

const aliceHash = "https://www.gravatar.com/avatar/ff8d9819fc0e12bf0d24892e45987e249a28dce836a85cad60e28eaaa8c6d976"

func TestURL(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		cfg      *config.GravatarConfig
		expected string
	}{
		{
			name:  "nil config",
			email: "alice@example.com",
		},
		{
			name:  "disabled",
			email: "alice@example.com",
			cfg:   &config.GravatarConfig{Enabled: false, DefaultImage: "mp"},
		},
		{
			name:  "blank email",
			email: "   ",
			cfg:   &config.GravatarConfig{Enabled: true},
		},
		{
			name:     "no parameters",
			email:    "alice@example.com",
			cfg:      &config.GravatarConfig{Enabled: true},
			expected: aliceHash,
		},
		{
			name:     "normalized email with all parameters",
			email:    "  Alice@Example.COM ",
			cfg:      &config.GravatarConfig{Enabled: true, DefaultImage: "identicon", Rating: "g", Size: 48},
			expected: aliceHash + "?d=identicon&r=g&s=48",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, URL(tt.email, tt.cfg))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GravatarConfig
		wantErr bool
	}{
		{"nil", nil, false},
		{"disabled ignores values", &config.GravatarConfig{Enabled: false, Rating: "nope"}, false},
		{"defaults", &config.GravatarConfig{Enabled: true, DefaultImage: "identicon", Rating: "g", Size: 48}, false},
		{"empty values", &config.GravatarConfig{Enabled: true}, false},
		{"bad default image", &config.GravatarConfig{Enabled: true, DefaultImage: "kitten"}, true},
		{"bad rating", &config.GravatarConfig{Enabled: true, Rating: "nc17"}, true},
		{"size too large", &config.GravatarConfig{Enabled: true, Size: 4096}, true},
		{"negative size", &config.GravatarConfig{Enabled: true, Size: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
