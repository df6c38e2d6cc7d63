package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stripe event types the pipeline reacts to. Anything else is ignored.
const (
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
)

type RevenueService interface {
	// IngestPaymentEvent maps one verified payment-provider event onto
	// revenue/churn samples. The caller must have verified the webhook
	// signature already; events for unknown customers are silently dropped.
	IngestPaymentEvent(ctx context.Context, eventType string, rawObject []byte) error
}

type revenueService struct {
	projects repo.ProjectRepo
	metrics  repo.MetricRepo
	log      *zap.Logger
}

func NewRevenueService(projects repo.ProjectRepo, metrics repo.MetricRepo, log *zap.Logger) RevenueService {
	return &revenueService{projects: projects, metrics: metrics, log: log}
}

type invoicePayload struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	AmountPaid   int64  `json:"amount_paid"`
}

type subscriptionPayload struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    struct {
		Data []struct {
			Quantity int64 `json:"quantity"`
			Plan     struct {
				Amount int64 `json:"amount"`
			} `json:"plan"`
		} `json:"data"`
	} `json:"items"`
}

func (s *revenueService) IngestPaymentEvent(ctx context.Context, eventType string, rawObject []byte) error {
	switch eventType {
	case EventInvoicePaymentSucceeded:
		return s.handleInvoicePaid(ctx, rawObject)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		return s.handleSubscriptionChange(ctx, rawObject)
	case EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, rawObject)
	default:
		return nil
	}
}

func (s *revenueService) handleInvoicePaid(ctx context.Context, rawObject []byte) error {
	var inv invoicePayload
	if err := sonic.Unmarshal(rawObject, &inv); err != nil {
		return fmt.Errorf("unmarshal invoice: %w", err)
	}

	project, ok, err := s.matchProject(ctx, inv.Customer)
	if err != nil || !ok {
		return err
	}

	// Stripe amounts are in minor units.
	amount := float64(inv.AmountPaid) / 100

	return s.metrics.Create(ctx, &model.Metric{
		ProjectID: project.ID,
		Type:      model.MetricMRR,
		Value:     amount,
		Metadata: datatypes.JSONMap{
			"invoice_id":      inv.ID,
			"subscription_id": inv.Subscription,
		},
		RecordedAt: time.Now().UTC(),
	})
}

// handleSubscriptionChange recomputes MRR from the subscription line items
// and writes it as a fresh absolute sample, not an incremental delta.
func (s *revenueService) handleSubscriptionChange(ctx context.Context, rawObject []byte) error {
	var sub subscriptionPayload
	if err := sonic.Unmarshal(rawObject, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	project, ok, err := s.matchProject(ctx, sub.Customer)
	if err != nil || !ok {
		return err
	}

	var total int64
	for _, item := range sub.Items.Data {
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		total += item.Plan.Amount * qty
	}
	mrr := float64(total) / 100

	return s.metrics.Create(ctx, &model.Metric{
		ProjectID: project.ID,
		Type:      model.MetricMRR,
		Value:     mrr,
		Metadata: datatypes.JSONMap{
			"subscription_id": sub.ID,
			"status":          sub.Status,
		},
		RecordedAt: time.Now().UTC(),
	})
}

// handleSubscriptionDeleted records a countable churn event marker with a
// fixed value of 1.
func (s *revenueService) handleSubscriptionDeleted(ctx context.Context, rawObject []byte) error {
	var sub subscriptionPayload
	if err := sonic.Unmarshal(rawObject, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	project, ok, err := s.matchProject(ctx, sub.Customer)
	if err != nil || !ok {
		return err
	}

	return s.metrics.Create(ctx, &model.Metric{
		ProjectID: project.ID,
		Type:      model.MetricChurnEvent,
		Value:     1,
		Metadata: datatypes.JSONMap{
			"subscription_id": sub.ID,
			"event":           EventSubscriptionDeleted,
		},
		RecordedAt: time.Now().UTC(),
	})
}

func (s *revenueService) matchProject(ctx context.Context, customerID string) (*model.Project, bool, error) {
	if customerID == "" {
		return nil, false, nil
	}
	project, err := s.projects.GetByStripeAccountID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("payment event for unknown customer dropped",
				zap.String("customer", customerID))
			return nil, false, nil
		}
		return nil, false, err
	}
	return project, true, nil
}
