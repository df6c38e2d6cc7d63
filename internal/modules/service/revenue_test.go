package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRevenueService_IngestPaymentEvent(t *testing.T) {
	ctx := context.Background()
	project := &model.Project{ID: uuid.New(), StripeAccountID: "cus_123"}

	capture := func(metrics *MockMetricRepo) *[]*model.Metric {
		var created []*model.Metric
		metrics.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*model.Metric))
		}).Return(nil)
		return &created
	}

	t.Run("paid invoice converts minor units", func(t *testing.T) {
		projects := new(MockProjectRepo)
		metrics := new(MockMetricRepo)
		projects.On("GetByStripeAccountID", ctx, "cus_123").Return(project, nil)
		created := capture(metrics)

		svc := NewRevenueService(projects, metrics, zap.NewNop())
		payload := []byte(`{"id":"in_1","customer":"cus_123","subscription":"sub_1","amount_paid":4900}`)
		require.NoError(t, svc.IngestPaymentEvent(ctx, EventInvoicePaymentSucceeded, payload))

		require.Len(t, *created, 1)
		m := (*created)[0]
		assert.Equal(t, model.MetricMRR, m.Type)
		assert.Equal(t, 49.0, m.Value)
		assert.Equal(t, "in_1", m.Metadata["invoice_id"])
		assert.Equal(t, "sub_1", m.Metadata["subscription_id"])
	})

	t.Run("subscription change sums line items", func(t *testing.T) {
		projects := new(MockProjectRepo)
		metrics := new(MockMetricRepo)
		projects.On("GetByStripeAccountID", ctx, "cus_123").Return(project, nil)
		created := capture(metrics)

		svc := NewRevenueService(projects, metrics, zap.NewNop())
		payload := []byte(`{"id":"sub_2","customer":"cus_123","status":"active","items":{"data":[{"quantity":2,"plan":{"amount":1000}},{"plan":{"amount":500}}]}}`)
		require.NoError(t, svc.IngestPaymentEvent(ctx, EventSubscriptionUpdated, payload))

		require.Len(t, *created, 1)
		m := (*created)[0]
		assert.Equal(t, model.MetricMRR, m.Type)
		// 2x1000 plus 1x500 (missing quantity defaults to one), in cents
		assert.Equal(t, 25.0, m.Value)
		assert.Equal(t, "active", m.Metadata["status"])
	})

	t.Run("subscription deleted records a churn event", func(t *testing.T) {
		projects := new(MockProjectRepo)
		metrics := new(MockMetricRepo)
		projects.On("GetByStripeAccountID", ctx, "cus_123").Return(project, nil)
		created := capture(metrics)

		svc := NewRevenueService(projects, metrics, zap.NewNop())
		payload := []byte(`{"id":"sub_3","customer":"cus_123","status":"canceled"}`)
		require.NoError(t, svc.IngestPaymentEvent(ctx, EventSubscriptionDeleted, payload))

		require.Len(t, *created, 1)
		m := (*created)[0]
		assert.Equal(t, model.MetricChurnEvent, m.Type)
		assert.Equal(t, 1.0, m.Value)
		assert.Equal(t, "sub_3", m.Metadata["subscription_id"])
	})

	t.Run("unknown customer is dropped silently", func(t *testing.T) {
		projects := new(MockProjectRepo)
		metrics := new(MockMetricRepo)
		projects.On("GetByStripeAccountID", ctx, "cus_unknown").Return(nil, gorm.ErrRecordNotFound)

		svc := NewRevenueService(projects, metrics, zap.NewNop())
		payload := []byte(`{"id":"in_9","customer":"cus_unknown","amount_paid":100}`)
		require.NoError(t, svc.IngestPaymentEvent(ctx, EventInvoicePaymentSucceeded, payload))

		metrics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing customer is dropped without a lookup", func(t *testing.T) {
		projects := new(MockProjectRepo)
		metrics := new(MockMetricRepo)

		svc := NewRevenueService(projects, metrics, zap.NewNop())
		require.NoError(t, svc.IngestPaymentEvent(ctx, EventInvoicePaymentSucceeded, []byte(`{"id":"in_9"}`)))

		projects.AssertNotCalled(t, "GetByStripeAccountID", mock.Anything, mock.Anything)
		metrics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unhandled event types are ignored", func(t *testing.T) {
		projects := new(MockProjectRepo)
		metrics := new(MockMetricRepo)

		svc := NewRevenueService(projects, metrics, zap.NewNop())
		require.NoError(t, svc.IngestPaymentEvent(ctx, "charge.refunded", []byte(`{}`)))

		metrics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
