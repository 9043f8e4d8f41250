package models

import (
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// User represents an account that can authenticate and hold dating data.
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"`

	Profile  *DatingProfile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Criteria *DatingCriteria `gorm:"foreignKey:UserID" json:"criteria,omitempty"`
}

/** --------------------DTO-------------------- */

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
