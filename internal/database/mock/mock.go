package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jon4hz/naijamap/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// Progress storage, keyed by user ID
	progress       map[uint]*database.Progress
	nextProgressID uint

	// Call counters
	ProgressReads  int
	ProgressWrites int

	// Error simulation
	CreateUserError                  error
	GetUserByIDError                 error
	GetUserByUsernameError           error
	FindUserByUsernameOrEmailError   error
	GetAllUsersError                 error
	CreateProgressError              error
	GetProgressByUserIDError         error
	UpdateProgressGuessedStatesError error
	PingError                        error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:          make(map[uint]*database.User),
		nextUserID:     1,
		progress:       make(map[uint]*database.Progress),
		nextProgressID: 1,
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.progress = make(map[uint]*database.Progress)
	m.nextProgressID = 1
	m.ProgressReads = 0
	m.ProgressWrites = 0

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByUsernameError = nil
	m.FindUserByUsernameOrEmailError = nil
	m.GetAllUsersError = nil
	m.CreateProgressError = nil
	m.GetProgressByUserIDError = nil
	m.UpdateProgressGuessedStatesError = nil
	m.PingError = nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, username, email, passwordHash string) (*database.User, error) {
	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username || u.Email == email {
			return nil, database.ErrDuplicate
		}
	}

	user := &database.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	user.ID = m.nextUserID
	m.nextUserID++
	m.users[user.ID] = user

	cp := *user
	return &cp, nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MockDB) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	if m.GetUserByUsernameError != nil {
		return nil, m.GetUserByUsernameError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*database.User, error) {
	if m.FindUserByUsernameOrEmailError != nil {
		return nil, m.FindUserByUsernameOrEmailError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username || user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	if m.GetAllUsersError != nil {
		return nil, m.GetAllUsersError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for _, user := range m.users {
		cp := *user
		if p, ok := m.progress[user.ID]; ok {
			pcp := *p
			cp.Progress = &pcp
		}
		users = append(users, cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Progress operations

func (m *MockDB) CreateProgress(ctx context.Context, userID uint) (*database.Progress, error) {
	if m.CreateProgressError != nil {
		return nil, m.CreateProgressError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.progress[userID]; ok {
		cp := *existing
		return &cp, nil
	}

	p := &database.Progress{
		UserID:        userID,
		GuessedStates: database.EmptyGuessedStates,
	}
	p.ID = m.nextProgressID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.nextProgressID++
	m.progress[userID] = p

	cp := *p
	return &cp, nil
}

func (m *MockDB) GetProgressByUserID(ctx context.Context, userID uint) (*database.Progress, error) {
	if m.GetProgressByUserIDError != nil {
		return nil, m.GetProgressByUserIDError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProgressReads++
	p, ok := m.progress[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockDB) UpdateProgressGuessedStates(ctx context.Context, userID uint, guessedStates string) error {
	if m.UpdateProgressGuessedStatesError != nil {
		return m.UpdateProgressGuessedStatesError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.progress[userID]
	if !ok {
		return database.ErrNotFound
	}
	m.ProgressWrites++
	p.GuessedStates = guessedStates
	p.UpdatedAt = time.Now()
	return nil
}

// ProgressCount returns the number of stored progress records.
func (m *MockDB) ProgressCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.progress)
}

// UserCount returns the number of stored users.
func (m *MockDB) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// Stats and utility

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Users:           int64(len(m.users)),
		ProgressRecords: int64(len(m.progress)),
	}
	for id := range m.users {
		if _, ok := m.progress[id]; !ok {
			stats.UsersWithoutRow++
		}
	}
	return stats, nil
}

func (m *MockDB) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockDB) Close() error {
	return nil
}
