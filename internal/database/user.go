package database

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents a registered player.
// Username and email are each unique; the password is only ever stored as a hash.
type User struct {
	gorm.Model
	Username     string    `gorm:"uniqueIndex;size:150;not null"`
	Email        string    `gorm:"uniqueIndex;size:250;not null"`
	PasswordHash string    `gorm:"size:250;not null"`
	Progress     *Progress `gorm:"constraint:OnDelete:CASCADE;"`
}

func (c *Client) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	user := User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if !isNotFound(err) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if !isNotFound(err) {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByUsernameOrEmail returns the first user matching either the username or the email.
func (c *Client) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("username = ? OR email = ?", username, email).First(&user).Error; err != nil {
		if !isNotFound(err) {
			log.Error("failed to look up user by username or email", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Preload("Progress").Order("id").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}
