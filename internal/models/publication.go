package models

import "gorm.io/gorm"

// Publication is a post authored by a user.
type Publication struct {
	gorm.Model
	UserID uint   `gorm:"not null;index"`
	Text   string `gorm:"type:text;not null"`
	File   string `gorm:"size:255"`

	User User `gorm:"foreignKey:UserID"`
}
