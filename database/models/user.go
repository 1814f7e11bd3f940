package models

import "gorm.io/gorm"

// User is the administrative account.
// It is created by the create-admin command and never through the web
// surface. Only the bcrypt hash of the password is stored.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}
