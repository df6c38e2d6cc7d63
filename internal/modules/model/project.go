package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	Slug        string `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Domain      string `gorm:"type:text" json:"domain"`
	IsPublic    bool   `gorm:"not null;default:false" json:"is_public"`

	// Per-provider credential pairs. An empty identifier or secret means the
	// provider is not configured for this project.
	GitHubRepo         string `gorm:"type:text;column:github_repo" json:"github_repo"`
	GitHubAccessToken  string `gorm:"type:text;column:github_access_token" json:"-"`
	TwitterHandle      string `gorm:"type:text" json:"twitter_handle"`
	TwitterAccessToken string `gorm:"type:text" json:"-"`
	PlausibleSiteID    string `gorm:"type:text" json:"plausible_site_id"`
	PlausibleAPIKey    string `gorm:"type:text" json:"-"`
	StripeAccountID    string `gorm:"type:text;index" json:"stripe_account_id"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Project <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> Metric
	Metrics []Metric `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Project <-> Goal
	Goals []Goal `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"goals,omitempty"`
}

func (Project) TableName() string { return "projects" }

// HasGitHub reports whether the GitHub integration is fully configured.
func (p *Project) HasGitHub() bool {
	return p.GitHubRepo != "" && p.GitHubAccessToken != ""
}

// HasTwitter reports whether the Twitter integration is fully configured.
func (p *Project) HasTwitter() bool {
	return p.TwitterHandle != "" && p.TwitterAccessToken != ""
}

// HasPlausible reports whether the Plausible integration is fully configured.
func (p *Project) HasPlausible() bool {
	return p.PlausibleSiteID != "" && p.PlausibleAPIKey != ""
}
