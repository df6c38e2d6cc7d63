package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MetricType is a closed enumeration of sample kinds. SHIP_STREAK,
// TWEET_COUNT and CHURN_EVENT are first-class types; earlier revisions
// stored them under ACTIVE_USERS, TWITTER_IMPRESSIONS and CHURN_RATE.
type MetricType string

const (
	MetricMRR                MetricType = "MRR"
	MetricTotalUsers         MetricType = "TOTAL_USERS"
	MetricActiveUsers        MetricType = "ACTIVE_USERS"
	MetricGitHubCommits      MetricType = "GITHUB_COMMITS"
	MetricGitHubPRs          MetricType = "GITHUB_PRS"
	MetricTwitterFollowers   MetricType = "TWITTER_FOLLOWERS"
	MetricTwitterImpressions MetricType = "TWITTER_IMPRESSIONS"
	MetricPageViews          MetricType = "PAGE_VIEWS"
	MetricUptimePercentage   MetricType = "UPTIME_PERCENTAGE"
	MetricNewSubscribers     MetricType = "NEW_SUBSCRIBERS"
	MetricChurnRate          MetricType = "CHURN_RATE"
	MetricShipStreak         MetricType = "SHIP_STREAK"
	MetricTweetCount         MetricType = "TWEET_COUNT"
	MetricChurnEvent         MetricType = "CHURN_EVENT"
)

// Valid reports whether t is a member of the closed enumeration.
func (t MetricType) Valid() bool {
	switch t {
	case MetricMRR, MetricTotalUsers, MetricActiveUsers, MetricGitHubCommits,
		MetricGitHubPRs, MetricTwitterFollowers, MetricTwitterImpressions,
		MetricPageViews, MetricUptimePercentage, MetricNewSubscribers,
		MetricChurnRate, MetricShipStreak, MetricTweetCount, MetricChurnEvent:
		return true
	}
	return false
}

// Metric is an append-only, point-in-time sample. Rows are never deleted and
// never mutated, with one exception: the growth-rate annotation merged into
// the metadata of the newest MRR sample. CreatedAt breaks recorded_at ties
// deterministically when projecting the latest sample per type.
type Metric struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_metric_project_id_type_recorded_at,priority:1" json:"project_id"`

	Type  MetricType `gorm:"type:text;not null;index:idx_metric_project_id_type_recorded_at,priority:2" json:"type"`
	Value float64    `gorm:"not null;default:0" json:"value"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"metadata"`

	RecordedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_metric_project_id_type_recorded_at,priority:3" json:"recorded_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Metric <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Metric) TableName() string { return "metrics" }
