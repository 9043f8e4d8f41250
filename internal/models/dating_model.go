package models

import (
	"gorm.io/gorm"
)

// DatingProfile is what a user exposes to potential call partners. Owned
// by the profile CRUD collaborator; the coordinator only reads it.
type DatingProfile struct {
	gorm.Model
	UserID          uint    `gorm:"uniqueIndex;not null" json:"userId"`
	Sex             string  `gorm:"type:varchar(10);not null" json:"sex"`
	Age             int     `gorm:"not null" json:"age"`
	Height          int     `gorm:"not null" json:"height"` // centimeters
	Hometown        string  `gorm:"type:varchar(100)" json:"hometown"`
	Language        string  `gorm:"type:varchar(50)" json:"language"`
	PersonalityType *string `gorm:"type:varchar(8)" json:"personalityType,omitempty"` // nil until the test is completed
}

// DatingCriteria is what the *other* party must satisfy. Ranges are
// inclusive.
type DatingCriteria struct {
	gorm.Model
	UserID    uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Sex       string `gorm:"type:varchar(10);not null" json:"sex"`
	AgeMin    int    `gorm:"not null" json:"ageMin"`
	AgeMax    int    `gorm:"not null" json:"ageMax"`
	HeightMin int    `gorm:"not null" json:"heightMin"`
	HeightMax int    `gorm:"not null" json:"heightMax"`
	Hometown  string `gorm:"type:varchar(100)" json:"hometown"`
	Language  string `gorm:"type:varchar(50)" json:"language"`
}
