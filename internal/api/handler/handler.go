package handler

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/naijamap/internal/account"
	"github.com/jon4hz/naijamap/internal/api/auth"
	"github.com/jon4hz/naijamap/internal/api/models"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/jon4hz/naijamap/internal/progress"
	"github.com/jon4hz/naijamap/internal/regions"
	"github.com/jon4hz/naijamap/internal/web/pages"
)

const (
	msgUserExists         = "User already exists."
	msgInvalidCredentials = "Invalid username or password."
)

type Handler struct {
	db       database.DB
	accounts *account.Store
	progress *progress.Store
	auth     *auth.Manager
}

func New(db database.DB, accounts *account.Store, progress *progress.Store, authManager *auth.Manager) *Handler {
	return &Handler{
		db:       db,
		accounts: accounts,
		progress: progress,
		auth:     authManager,
	}
}

func render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("Failed to render page", "path", c.FullPath(), "error", err)
	}
}

// Index sends signed-in players to the game and everybody else to the login page.
func (h *Handler) Index(c *gin.Context) {
	if _, ok := h.auth.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/game")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) SignupPage(c *gin.Context) {
	render(c, http.StatusOK, pages.Signup(pages.SignupData{}))
}

func (h *Handler) Signup(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.accounts.Register(c.Request.Context(), username, email, password)
	var missing *account.MissingFieldError
	switch {
	case errors.Is(err, account.ErrConflict):
		render(c, http.StatusOK, pages.Signup(pages.SignupData{
			Error:    msgUserExists,
			Username: username,
			Email:    email,
		}))
		return
	case errors.As(err, &missing):
		c.String(http.StatusBadRequest, "%s", missing.Error())
		return
	case err != nil:
		log.Error("Failed to register user", "error", err)
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	// GetFor creates the record lazily if this fails.
	if _, err := h.progress.CreateFor(c.Request.Context(), user.ID); err != nil {
		log.Error("Failed to create progress for new user", "user_id", user.ID, "error", err)
	}

	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) LoginPage(c *gin.Context) {
	if _, ok := h.auth.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/game")
		return
	}
	render(c, http.StatusOK, pages.Login(pages.LoginData{}))
}

func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.accounts.Authenticate(c.Request.Context(), username, password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		log.Info("Failed login attempt", "username", username, "client_ip", c.ClientIP())
		render(c, http.StatusOK, pages.Login(pages.LoginData{
			Error:    msgInvalidCredentials,
			Username: username,
		}))
		return
	}
	if err != nil {
		log.Error("Failed to authenticate user", "error", err)
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	if err := h.auth.Login(c, user); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	log.Debug("User logged in", "username", user.Username)
	c.Redirect(http.StatusFound, "/game")
}

func (h *Handler) Game(c *gin.Context) {
	user := c.MustGet(auth.ContextUser).(*models.User)

	p, err := h.progress.GetFor(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("Failed to load progress", "user_id", user.ID, "error", err)
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	guessed, err := progress.Regions(p)
	if err != nil {
		log.Error("Stored progress is not a valid region list", "user_id", user.ID, "error", err)
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}

	render(c, http.StatusOK, pages.Game(user, guessed, p.HighScore, p.UpdatedAt))
}

func (h *Handler) SaveProgress(c *gin.Context) {
	user := c.MustGet(auth.ContextUser).(*models.User)

	var req models.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.progress.SaveRegions(c.Request.Context(), user.ID, req.GuessedStates); err != nil {
		log.Error("Failed to save progress", "user_id", user.ID, "error", err)
		c.AbortWithError(http.StatusInternalServerError, err) //nolint:errcheck
		return
	}
	c.String(http.StatusOK, "OK")
}

func (h *Handler) Logout(c *gin.Context) {
	username := h.auth.Username(c)
	if err := h.auth.Logout(c); err != nil {
		if err := c.AbortWithError(http.StatusInternalServerError, err); err != nil {
			log.Error("Failed to abort with error", "error", err)
		}
		return
	}
	if username != "" {
		log.Debug("User logged out", "username", username)
	}
	c.Redirect(http.StatusFound, "/login")
}

// StateDetail renders the static page of a single region.
func (h *Handler) StateDetail(c *gin.Context) {
	name := regions.Normalize(c.Param("name"))
	user, _ := h.auth.CurrentUser(c)
	render(c, http.StatusOK, pages.State(user, name))
}

// Reset only clears the session-scoped guessed_states key. Persisted progress is left alone;
// the CLI reset command clears that.
func (h *Handler) Reset(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(auth.SessionGuessedStates)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		log.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
