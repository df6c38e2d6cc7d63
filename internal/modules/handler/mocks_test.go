package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/service"
	"github.com/stretchr/testify/mock"
)

// MockProjectService is a mock implementation of service.ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, userID uuid.UUID) ([]*service.ProjectListItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.ProjectListItem), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, in service.UpdateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, userID, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	args := m.Called(ctx, userID, projectID)
	return args.Error(0)
}

// MockMetricService is a mock implementation of service.MetricService
type MockMetricService struct {
	mock.Mock
}

func (m *MockMetricService) LatestMetrics(ctx context.Context, projectID uuid.UUID) (map[model.MetricType]*model.Metric, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.MetricType]*model.Metric), args.Error(1)
}

func (m *MockMetricService) Overview(ctx context.Context, projectID uuid.UUID) (*service.Overview, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Overview), args.Error(1)
}

func (m *MockMetricService) PublicOverview(ctx context.Context, slug string) (*service.PublicOverview, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicOverview), args.Error(1)
}

func (m *MockMetricService) SyncStatus(ctx context.Context, projectID uuid.UUID) (map[model.MetricType]service.SyncStatus, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.MetricType]service.SyncStatus), args.Error(1)
}

func (m *MockMetricService) Record(ctx context.Context, in service.RecordMetricInput) (*model.Metric, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Metric), args.Error(1)
}

// MockSyncService is a mock implementation of service.SyncService
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncProject(ctx context.Context, projectID uuid.UUID, providerFilter string) (*service.SyncReport, error) {
	args := m.Called(ctx, projectID, providerFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncReport), args.Error(1)
}

func (m *MockSyncService) SyncAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSyncService) UpdateShipStreaks(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRevenueService is a mock implementation of service.RevenueService
type MockRevenueService struct {
	mock.Mock
}

func (m *MockRevenueService) IngestPaymentEvent(ctx context.Context, eventType string, rawObject []byte) error {
	args := m.Called(ctx, eventType, rawObject)
	return args.Error(0)
}
