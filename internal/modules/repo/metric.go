package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MetricRepo interface {
	Create(ctx context.Context, m *model.Metric) error
	CreateBatch(ctx context.Context, ms []*model.Metric) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Metric, error)
	ListByType(ctx context.Context, projectID uuid.UUID, t model.MetricType, limit int) ([]*model.Metric, error)
	ListByTypeSince(ctx context.Context, projectID uuid.UUID, t model.MetricType, since time.Time) ([]*model.Metric, error)
	LatestPerType(ctx context.Context, projectID uuid.UUID) ([]*model.Metric, error)
	MergeMetadata(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
}

type metricRepo struct{ db *gorm.DB }

func NewMetricRepo(db *gorm.DB) MetricRepo {
	return &metricRepo{db: db}
}

// latestOrder breaks recorded_at ties by insertion order (created_at, then
// id) so "latest sample per type" is deterministic.
const latestOrder = "recorded_at DESC, created_at DESC, id DESC"

func (r *metricRepo) Create(ctx context.Context, m *model.Metric) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *metricRepo) CreateBatch(ctx context.Context, ms []*model.Metric) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ms).Error
}

func (r *metricRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Metric, error) {
	var metrics []*model.Metric
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order(latestOrder).
		Find(&metrics).Error
	return metrics, err
}

func (r *metricRepo) ListByType(ctx context.Context, projectID uuid.UUID, t model.MetricType, limit int) ([]*model.Metric, error) {
	var metrics []*model.Metric
	q := r.db.WithContext(ctx).
		Where("project_id = ? AND type = ?", projectID, t).
		Order(latestOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return metrics, q.Find(&metrics).Error
}

func (r *metricRepo) ListByTypeSince(ctx context.Context, projectID uuid.UUID, t model.MetricType, since time.Time) ([]*model.Metric, error) {
	var metrics []*model.Metric
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND type = ? AND recorded_at >= ?", projectID, t, since).
		Order(latestOrder).
		Find(&metrics).Error
	return metrics, err
}

// LatestPerType returns every sample for the project ordered newest first.
// The service layer keeps the first sample it sees per type; the scan is
// linear in sample count, which is fine at this scale.
func (r *metricRepo) LatestPerType(ctx context.Context, projectID uuid.UUID) ([]*model.Metric, error) {
	return r.ListByProject(ctx, projectID)
}

// MergeMetadata additively merges patch into the sample's metadata using a
// jsonb concatenation, the one sanctioned mutation of a metric row.
func (r *metricRepo) MergeMetadata(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Metric{}).
		Where("id = ?", id).
		UpdateColumn("metadata", gorm.Expr("COALESCE(metadata, '{}'::jsonb) || ?", datatypes.JSONMap(patch))).
		Error
}

func (r *metricRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Metric{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
