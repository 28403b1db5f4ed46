package models

import "gorm.io/gorm"

const (
	// DefaultImage is the avatar reference every account starts with.
	DefaultImage = "default.png"
	// RoleUser is the role assigned on registration.
	RoleUser = "role_user"
)

// User represents a registered account.
// Nickname and Email are stored lowercase so uniqueness is case-insensitive.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"`
	Surname      string `gorm:"size:255;not null"`
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	Bio          string `gorm:"size:1000"`
	PasswordHash string `gorm:"size:255;not null"`
	Image        string `gorm:"size:255;not null;default:'default.png'"`
	Role         string `gorm:"size:50;not null;default:'role_user';index"`
}
