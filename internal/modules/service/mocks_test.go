package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/stretchr/testify/mock"
)

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetByStripeAccountID(ctx context.Context, accountID string) (*model.Project, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListSyncable(ctx context.Context) ([]*model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListAll(ctx context.Context) ([]*model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMetricRepo is a mock implementation of repo.MetricRepo
type MockMetricRepo struct {
	mock.Mock
}

func (m *MockMetricRepo) Create(ctx context.Context, metric *model.Metric) error {
	args := m.Called(ctx, metric)
	return args.Error(0)
}

func (m *MockMetricRepo) CreateBatch(ctx context.Context, metrics []*model.Metric) error {
	args := m.Called(ctx, metrics)
	return args.Error(0)
}

func (m *MockMetricRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Metric, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Metric), args.Error(1)
}

func (m *MockMetricRepo) ListByType(ctx context.Context, projectID uuid.UUID, t model.MetricType, limit int) ([]*model.Metric, error) {
	args := m.Called(ctx, projectID, t, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Metric), args.Error(1)
}

func (m *MockMetricRepo) ListByTypeSince(ctx context.Context, projectID uuid.UUID, t model.MetricType, since time.Time) ([]*model.Metric, error) {
	args := m.Called(ctx, projectID, t, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Metric), args.Error(1)
}

func (m *MockMetricRepo) LatestPerType(ctx context.Context, projectID uuid.UUID) ([]*model.Metric, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Metric), args.Error(1)
}

func (m *MockMetricRepo) MergeMetadata(ctx context.Context, id uuid.UUID, patch map[string]interface{}) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockMetricRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGoalRepo is a mock implementation of repo.GoalRepo
type MockGoalRepo struct {
	mock.Mock
}

func (m *MockGoalRepo) Create(ctx context.Context, g *model.Goal) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockGoalRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Goal), args.Error(1)
}

func (m *MockGoalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Goal, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Goal), args.Error(1)
}

func (m *MockGoalRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockGoalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
