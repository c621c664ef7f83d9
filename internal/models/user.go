package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Bill      *Bill     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"bill,omitempty"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"-"`
}

// CreateUserInput is the payload accepted by the registration endpoint.
type CreateUserInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateUserInput carries the patchable user fields. Nil means "leave as is".
type UpdateUserInput struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}
