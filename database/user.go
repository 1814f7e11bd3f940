package database

import (
	"context"
	"errors"

	"github.com/atelierhq/atelier/database/models"
	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for unknown usernames and wrong
// passwords alike, so the login form cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CreateUser creates a user with a bcrypt hash of the given password.
func (c *Client) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := c.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Error("failed to get user by username", "error", err)
		}
		return nil, err
	}
	return &user, nil
}

// VerifyUser checks the given credentials against the stored bcrypt hash.
// A missing user and a wrong password are indistinguishable to the caller.
func (c *Client) VerifyUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
