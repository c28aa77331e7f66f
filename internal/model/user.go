package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	FirstName   *string
	LastName    *string
	PhoneNumber string `gorm:"required; not null; index"`
	PushToken   *string

	// Permission grants reported by the user's device; queried, never forced.
	ForegroundLocationGranted bool
	BackgroundLocationGranted bool
	NotificationsGranted      bool

	Friends []*User `gorm:"many2many:friendships"`
}

// DisplayName falls back to the phone number when no name is set.
func (u User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.PhoneNumber
	}
	return strings.Join(parts, " ")
}
