package model

import (
	"time"

	"github.com/google/uuid"
)

// Goal is a user-defined numeric target scoped to one project. It is only
// mutated through the CRUD surface; the ingestion pipeline never touches it.
type Goal struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	Title       string     `gorm:"type:text;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Target      float64    `gorm:"not null" json:"target"`
	Current     float64    `gorm:"not null;default:0" json:"current"`
	Unit        string     `gorm:"type:text;not null" json:"unit"`
	Deadline    *time.Time `json:"deadline,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Goal <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Goal) TableName() string { return "goals" }
