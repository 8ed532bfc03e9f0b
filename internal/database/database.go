package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"github.com/jon4hz/naijamap/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// DB is the persistence interface used by the stores.
type DB interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)

	CreateProgress(ctx context.Context, userID uint) (*Progress, error)
	GetProgressByUserID(ctx context.Context, userID uint) (*Progress, error)
	UpdateProgressGuessedStates(ctx context.Context, userID uint, guessedStates string) error

	GetStats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

// Stats holds row counts for the stats command.
type Stats struct {
	Users           int64
	ProgressRecords int64
	UsersWithoutRow int64
}

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection for the configured driver and performs migrations.
func New(cfg *config.DatabaseConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := migrator(db, cfg.Driver).AutoMigrate(
		&User{},
		&Progress{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Debug("database ready", "driver", cfg.Driver)
	return &Client{db: db}, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = config.DefaultSQLitePath
		}
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	case config.DatabaseDriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case config.DatabaseDriverMySQL:
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// mysqlTableOptions gives new mysql tables a binary collation so usernames compare
// case-sensitively as they do on sqlite and postgres.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

func migrator(db *gorm.DB, driver config.DatabaseDriver) *gorm.DB {
	if driver == config.DatabaseDriverMySQL {
		return db.Set("gorm:table_options", mysqlTableOptions)
	}
	return db
}

// ensureDir creates the parent directory of a sqlite database file.
func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func newGormLogger() logger.Interface {
	return logger.New(
		log.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// Ping checks that the database connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetStats returns row counts of the user and progress tables.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := c.db.WithContext(ctx)
	if err := db.Model(&User{}).Count(&stats.Users).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&Progress{}).Count(&stats.ProgressRecords).Error; err != nil {
		return nil, fmt.Errorf("failed to count progress records: %w", err)
	}
	if err := db.Model(&User{}).
		Where("NOT EXISTS (SELECT 1 FROM progresses WHERE progresses.user_id = users.id AND progresses.deleted_at IS NULL)").
		Count(&stats.UsersWithoutRow).Error; err != nil {
		return nil, fmt.Errorf("failed to count users without progress: %w", err)
	}
	return &stats, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
