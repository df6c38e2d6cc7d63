package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email    string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name     string    `gorm:"type:text" json:"name"`
	Username string    `gorm:"type:text;uniqueIndex" json:"username"`

	// APIKeyHMAC is the HMAC-SHA256 of the user's API key secret, used for
	// constant-time lookup during authentication. The raw key is never stored.
	APIKeyHMAC string `gorm:"type:text;not null;index" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// User <-> Project
	Projects []Project `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }
