package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jon4hz/naijamap/internal/cache"
	"github.com/jon4hz/naijamap/internal/config"
	"github.com/jon4hz/naijamap/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testConfig(store config.SessionStore) *config.Config {
	return &config.Config{
		Listen:        "127.0.0.1:0",
		SessionKey:    "test-secret",
		SessionMaxAge: 3600,
		SessionStore:  store,
		Database: &config.DatabaseConfig{
			Driver: config.DatabaseDriverSQLite,
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		},
		Cache:    &config.CacheConfig{Type: config.CacheTypeMemory, TTL: time.Minute},
		Gravatar: &config.GravatarConfig{Enabled: false},
	}
}

type ServerTestSuite struct {
	suite.Suite
	store  config.SessionStore
	db     *database.Client
	ts     *httptest.Server
	client *http.Client
	ctx    context.Context
}

func TestServerWithMemorySessions(t *testing.T) {
	suite.Run(t, &ServerTestSuite{store: config.SessionStoreMemory})
}

func TestServerWithCookieSessions(t *testing.T) {
	suite.Run(t, &ServerTestSuite{store: config.SessionStoreCookie})
}

func (s *ServerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.ctx = context.Background()

	cfg := testConfig(s.store)
	db, err := database.New(cfg.Database)
	s.Require().NoError(err)
	s.db = db

	progressCache, err := cache.NewProgressCache(cfg.Cache)
	s.Require().NoError(err)

	server, err := New(cfg, db, progressCache, false)
	s.Require().NoError(err)
	s.ts = httptest.NewServer(server.Handler())

	s.client = s.newClient()
}

func (s *ServerTestSuite) TearDownTest() {
	s.ts.Close()
	_ = s.db.Close()
}

func (s *ServerTestSuite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	code     int
	location string
	body     string
}

func (s *ServerTestSuite) send(client *http.Client, req *http.Request) response {
	resp, err := client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return response{code: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (s *ServerTestSuite) get(client *http.Client, path string) response {
	req, err := http.NewRequest(http.MethodGet, s.ts.URL+path, nil)
	s.Require().NoError(err)
	return s.send(client, req)
}

func (s *ServerTestSuite) postForm(client *http.Client, path string, form url.Values) response {
	req, err := http.NewRequest(http.MethodPost, s.ts.URL+path, strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.send(client, req)
}

func (s *ServerTestSuite) postJSON(client *http.Client, path, body string) response {
	req, err := http.NewRequest(http.MethodPost, s.ts.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	return s.send(client, req)
}

func (s *ServerTestSuite) signup(client *http.Client, username, email, password string) response {
	return s.postForm(client, "/signup", url.Values{"username": {username}, "email": {email}, "password": {password}})
}

func (s *ServerTestSuite) login(client *http.Client, username, password string) response {
	return s.postForm(client, "/login", url.Values{"username": {username}, "password": {password}})
}

func (s *ServerTestSuite) stats() *database.Stats {
	stats, err := s.db.GetStats(s.ctx)
	s.Require().NoError(err)
	return stats
}

func (s *ServerTestSuite) TestAliceScenario() {
	r := s.signup(s.client, "alice", "alice@x.com", "pw1")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/login", r.location)

	stats := s.stats()
	s.EqualValues(1, stats.Users)
	s.EqualValues(1, stats.ProgressRecords)
	alice, err := s.db.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	p, err := s.db.GetProgressByUserID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("[]", p.GuessedStates)

	r = s.login(s.client, "alice", "pw1")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/game", r.location)

	r = s.postJSON(s.client, "/save_progress", `{"guessed_states":["Abia"]}`)
	s.Equal(http.StatusOK, r.code)
	s.Equal("OK", r.body)

	r = s.get(s.client, "/game")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, `guessed: ["Abia"]`)

	r = s.get(s.client, "/logout")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/login", r.location)

	r = s.get(s.client, "/game")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/login", r.location)
}

func (s *ServerTestSuite) TestDuplicateSignupCreatesNothing() {
	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)

	r := s.signup(s.client, "alice", "other@x.com", "pw2")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, "User already exists.")

	r = s.signup(s.client, "bob", "alice@x.com", "pw2")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, "User already exists.")

	stats := s.stats()
	s.EqualValues(1, stats.Users)
	s.EqualValues(1, stats.ProgressRecords)
}

func (s *ServerTestSuite) TestSignupMissingFields() {
	tests := []struct {
		form     url.Values
		expected string
	}{
		{url.Values{"email": {"a@x.com"}, "password": {"pw"}}, "username is required"},
		{url.Values{"username": {"alice"}, "password": {"pw"}}, "email is required"},
		{url.Values{"username": {"alice"}, "email": {"a@x.com"}}, "password is required"},
	}
	for _, tt := range tests {
		r := s.postForm(s.client, "/signup", tt.form)
		s.Equal(http.StatusBadRequest, r.code)
		s.Equal(tt.expected, r.body)
	}
	s.EqualValues(0, s.stats().Users)
}

func (s *ServerTestSuite) TestLoginFailuresLookTheSame() {
	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)

	wrongPassword := s.login(s.client, "alice", "nope")
	unknownUser := s.login(s.client, "mallory", "pw1")

	s.Equal(http.StatusOK, wrongPassword.code)
	s.Equal(wrongPassword.code, unknownUser.code)
	s.Contains(wrongPassword.body, "Invalid username or password.")
	s.Contains(unknownUser.body, "Invalid username or password.")

	r := s.get(s.client, "/game")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/login", r.location)
}

func (s *ServerTestSuite) TestIndexAndLoginPageRedirects() {
	r := s.get(s.client, "/")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/login", r.location)

	r = s.get(s.client, "/login")
	s.Equal(http.StatusOK, r.code)

	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)
	s.Require().Equal(http.StatusFound, s.login(s.client, "alice", "pw1").code)

	r = s.get(s.client, "/")
	s.Equal("/game", r.location)
	r = s.get(s.client, "/login")
	s.Equal(http.StatusFound, r.code)
	s.Equal("/game", r.location)
}

func (s *ServerTestSuite) TestSaveProgressRequiresSession() {
	r := s.postJSON(s.client, "/save_progress", `{"guessed_states":["Abia"]}`)
	s.Equal(http.StatusForbidden, r.code)
	s.Equal("Not logged in", r.body)
	s.EqualValues(0, s.stats().ProgressRecords)
}

func (s *ServerTestSuite) TestSaveProgressValidatesBody() {
	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)
	s.Require().Equal(http.StatusFound, s.login(s.client, "alice", "pw1").code)

	for _, body := range []string{`{}`, `{"guessed_states": null}`, `{"guessed_states": "Abia"}`, `not json`} {
		r := s.postJSON(s.client, "/save_progress", body)
		s.Equal(http.StatusBadRequest, r.code, body)
		s.Contains(r.body, `"error"`, body)
	}

	r := s.postJSON(s.client, "/save_progress", `{"guessed_states":[]}`)
	s.Equal(http.StatusOK, r.code)
}

func (s *ServerTestSuite) TestSaveProgressKeepsOrder() {
	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)
	s.Require().Equal(http.StatusFound, s.login(s.client, "alice", "pw1").code)

	s.Require().Equal(http.StatusOK, s.postJSON(s.client, "/save_progress", `{"guessed_states":["Lagos","Kano"]}`).code)

	r := s.get(s.client, "/game")
	s.Contains(r.body, `guessed: ["Lagos","Kano"]`)
}

func (s *ServerTestSuite) TestSessionsAreIsolated() {
	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)
	s.Require().Equal(http.StatusFound, s.signup(s.client, "bob", "bob@x.com", "pw2").code)

	bob := s.newClient()
	s.Require().Equal(http.StatusFound, s.login(s.client, "alice", "pw1").code)
	s.Require().Equal(http.StatusFound, s.login(bob, "bob", "pw2").code)

	s.Require().Equal(http.StatusOK, s.postJSON(s.client, "/save_progress", `{"guessed_states":["Abia"]}`).code)

	r := s.get(bob, "/game")
	s.Contains(r.body, "guessed: []")
}

func (s *ServerTestSuite) TestStateDetail() {
	r := s.get(s.client, "/state/cross-river")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, "<h1>Cross River</h1>")
	s.Contains(r.body, "Calabar")

	r = s.get(s.client, "/state/LAGOS")
	s.Contains(r.body, "<h1>Lagos</h1>")

	r = s.get(s.client, "/state/atlantis")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, "Atlantis is not one of the states of Nigeria.")
}

func (s *ServerTestSuite) TestResetLeavesPersistedProgress() {
	s.Require().Equal(http.StatusFound, s.signup(s.client, "alice", "alice@x.com", "pw1").code)
	s.Require().Equal(http.StatusFound, s.login(s.client, "alice", "pw1").code)
	s.Require().Equal(http.StatusOK, s.postJSON(s.client, "/save_progress", `{"guessed_states":["Abia"]}`).code)

	r := s.postJSON(s.client, "/reset", "")
	s.Equal(http.StatusOK, r.code)
	s.JSONEq(`{"success": true}`, r.body)

	r = s.get(s.client, "/game")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, `guessed: ["Abia"]`)
}

func (s *ServerTestSuite) TestHealthAndStatic() {
	r := s.get(s.client, "/healthz")
	s.Equal(http.StatusOK, r.code)
	s.JSONEq(`{"status": "ok"}`, r.body)

	r = s.get(s.client, "/static/game.js")
	s.Equal(http.StatusOK, r.code)
	s.Contains(r.body, "/save_progress")
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, nil, nil, false)
	assert.Error(t, err)

	_, err = New(testConfig(config.SessionStoreMemory), nil, nil, false)
	assert.Error(t, err)
}

func TestNewRejectsBadGravatarConfig(t *testing.T) {
	cfg := testConfig(config.SessionStoreMemory)
	cfg.Gravatar = &config.GravatarConfig{Enabled: true, Rating: "nc17"}

	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = New(cfg, db, nil, false)
	assert.Error(t, err)
}

func TestRequestIDHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(config.SessionStoreCookie)
	cfg.CORS = &config.CORSConfig{AllowedOrigins: []string{"https://game.example.org"}}
	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	server, err := New(cfg, db, nil, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://game.example.org")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "https://game.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(config.SessionStoreCookie)
	db, err := database.New(cfg.Database)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	server, err := New(cfg, db, nil, false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
