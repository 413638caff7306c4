package models

import (
	"time"
)

// User is a publisher able to request API tokens
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PersonalAccessToken records a token issued to one device of a user.
// The bearer JWT carries TokenID as its jti and is only honoured while the row exists.
type PersonalAccessToken struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	UserID     uint64     `gorm:"not null;index"`
	User       *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID"`
	Name       string     `gorm:"size:255;not null"`
	TokenID    string     `gorm:"type:char(36);not null;uniqueIndex"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for PersonalAccessToken
func (PersonalAccessToken) TableName() string {
	return "personal_access_tokens"
}
