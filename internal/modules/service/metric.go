package service

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// publicOverviewTTL bounds staleness of the cached public page. The
// underlying data only moves on sync runs, so a minute is plenty fresh.
const publicOverviewTTL = time.Minute

// Overview is the dashboard read projection: the latest sample per metric
// type plus the project's goals.
type Overview struct {
	Metrics map[model.MetricType]*model.Metric `json:"metrics"`
	Goals   []*model.Goal                      `json:"goals"`
}

// PublicOverview is the subset of one project exposed on the public page.
type PublicOverview struct {
	Name        string                             `json:"name"`
	Slug        string                             `json:"slug"`
	Description string                             `json:"description,omitempty"`
	Domain      string                             `json:"domain,omitempty"`
	Metrics     map[model.MetricType]*model.Metric `json:"metrics"`
	Goals       []*model.Goal                      `json:"goals"`
}

// SyncStatus reports, per metric type, when the last sample landed and what
// it was.
type SyncStatus struct {
	LastSync time.Time `json:"last_sync"`
	Value    float64   `json:"value"`
}

type MetricService interface {
	LatestMetrics(ctx context.Context, projectID uuid.UUID) (map[model.MetricType]*model.Metric, error)
	Overview(ctx context.Context, projectID uuid.UUID) (*Overview, error)
	PublicOverview(ctx context.Context, slug string) (*PublicOverview, error)
	SyncStatus(ctx context.Context, projectID uuid.UUID) (map[model.MetricType]SyncStatus, error)
	Record(ctx context.Context, in RecordMetricInput) (*model.Metric, error)
}

type metricService struct {
	projects repo.ProjectRepo
	metrics  repo.MetricRepo
	goals    repo.GoalRepo
	rdb      *redis.Client
	log      *zap.Logger
}

func NewMetricService(
	projects repo.ProjectRepo,
	metrics repo.MetricRepo,
	goals repo.GoalRepo,
	rdb *redis.Client,
	log *zap.Logger,
) MetricService {
	return &metricService{projects: projects, metrics: metrics, goals: goals, rdb: rdb, log: log}
}

// LatestMetrics keeps the newest sample per type. The repo returns samples
// ordered newest first with a deterministic tie break, so the first sample
// seen per type wins.
func (s *metricService) LatestMetrics(ctx context.Context, projectID uuid.UUID) (map[model.MetricType]*model.Metric, error) {
	samples, err := s.metrics.LatestPerType(ctx, projectID)
	if err != nil {
		return nil, err
	}

	latest := make(map[model.MetricType]*model.Metric)
	for _, m := range samples {
		if _, seen := latest[m.Type]; !seen {
			latest[m.Type] = m
		}
	}
	return latest, nil
}

func (s *metricService) Overview(ctx context.Context, projectID uuid.UUID) (*Overview, error) {
	metrics, err := s.LatestMetrics(ctx, projectID)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Overview{Metrics: metrics, Goals: goals}, nil
}

// PublicOverview resolves a project by slug for the public page. Unknown
// slugs and non-public projects both come back as ErrProjectNotFound.
func (s *metricService) PublicOverview(ctx context.Context, slug string) (*PublicOverview, error) {
	cacheKey := "public_overview:" + slug
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached PublicOverview
			if err := sonic.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	project, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if !project.IsPublic {
		return nil, ErrProjectNotFound
	}

	overview, err := s.Overview(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	out := &PublicOverview{
		Name:        project.Name,
		Slug:        project.Slug,
		Description: project.Description,
		Domain:      project.Domain,
		Metrics:     overview.Metrics,
		Goals:       overview.Goals,
	}

	if s.rdb != nil {
		if raw, err := sonic.Marshal(out); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, publicOverviewTTL).Err(); err != nil {
				s.log.Debug("public overview cache write failed",
					zap.String("slug", slug), zap.Error(err))
			}
		}
	}
	return out, nil
}

func (s *metricService) SyncStatus(ctx context.Context, projectID uuid.UUID) (map[model.MetricType]SyncStatus, error) {
	latest, err := s.LatestMetrics(ctx, projectID)
	if err != nil {
		return nil, err
	}
	status := make(map[model.MetricType]SyncStatus, len(latest))
	for t, m := range latest {
		status[t] = SyncStatus{LastSync: m.RecordedAt, Value: m.Value}
	}
	return status, nil
}

type RecordMetricInput struct {
	ProjectID uuid.UUID              `json:"project_id"`
	Type      model.MetricType       `json:"type"`
	Value     float64                `json:"value"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Record writes one manual sample. The type must be a member of the closed
// enumeration.
func (s *metricService) Record(ctx context.Context, in RecordMetricInput) (*model.Metric, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidMetric
	}

	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	m := &model.Metric{
		ProjectID:  in.ProjectID,
		Type:       in.Type,
		Value:      in.Value,
		Metadata:   datatypes.JSONMap(metadata),
		RecordedAt: time.Now().UTC(),
	}
	if err := s.metrics.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
