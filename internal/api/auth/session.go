package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/naijamap/internal/api/models"
	"github.com/jon4hz/naijamap/internal/config"
	"github.com/jon4hz/naijamap/internal/database"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"

	// SessionGuessedStates is the session key cleared by POST /reset.
	SessionGuessedStates = "guessed_states"

	// ContextUser is the gin context key holding the *models.User of an authenticated request.
	ContextUser = "user"
)

// Manager keeps track of who is signed in.
type Manager struct {
	db          database.DB
	gravatarCfg *config.GravatarConfig
}

func New(db database.DB, gravatarCfg *config.GravatarConfig) *Manager {
	return &Manager{
		db:          db,
		gravatarCfg: gravatarCfg,
	}
}

// Login marks the session as authenticated for user. With a store from NewStore the
// session also gets a new ID.
func (m *Manager) Login(c *gin.Context, user *database.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionRotate, true)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout clears every value of the session.
func (m *Manager) Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user, or false for an anonymous session.
func (m *Manager) CurrentUser(c *gin.Context) (*models.User, bool) {
	user, err := m.resolve(c)
	if err != nil {
		log.Error("failed to resolve session user", "error", err)
		return nil, false
	}
	return user, user != nil
}

// Username returns the username stored in the session without touching the database.
func (m *Manager) Username(c *gin.Context) string {
	return getSessionString(sessions.Default(c), sessionUsername)
}

// resolve loads the session user. A nil user with a nil error means anonymous.
func (m *Manager) resolve(c *gin.Context) (*models.User, error) {
	session := sessions.Default(c)
	userID, ok := getSessionUint(session, sessionUserID)
	if !ok {
		return nil, nil
	}

	user, err := m.db.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn("session refers to a missing user, clearing it", "user_id", userID)
		if err := m.Logout(c); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return models.ToUser(user, m.gravatarCfg), nil
}

// RequireAuth guards page views: anonymous requests are redirected to the login page.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
			return
		}
		if user == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireAuthAPI guards ajax endpoints: anonymous requests get a plain 403.
func (m *Manager) RequireAuthAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
			return
		}
		if user == nil {
			c.String(http.StatusForbidden, "Not logged in")
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// Helper functions to safely get session values.
func getSessionString(session sessions.Session, key string) string {
	if val := session.Get(key); val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getSessionUint(session sessions.Session, key string) (uint, bool) {
	var (
		id  uint
		err error
	)
	switch v := session.Get(key).(type) {
	case uint:
		id = v
	case uint64:
		id, err = safecast.ToUint(v)
	case int:
		id, err = safecast.ToUint(v)
	case int64:
		id, err = safecast.ToUint(v)
	default:
		return 0, false
	}
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
