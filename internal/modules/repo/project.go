package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Project, error)
	GetBySlug(ctx context.Context, slug string) (*model.Project, error)
	GetByStripeAccountID(ctx context.Context, accountID string) (*model.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Project, error)
	ListSyncable(ctx context.Context) ([]*model.Project, error)
	ListAll(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetByStripeAccountID(ctx context.Context, accountID string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("stripe_account_id = ?", accountID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Goals").
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// ListSyncable returns projects with at least one pull-provider credential
// pair fully configured. Stripe-only projects are excluded: revenue arrives
// by webhook, not by polling.
func (r *projectRepo) ListSyncable(ctx context.Context) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Where("(github_repo <> '' AND github_access_token <> '')").
		Or("(twitter_handle <> '' AND twitter_access_token <> '')").
		Or("(plausible_site_id <> '' AND plausible_api_key <> '')").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) ListAll(ctx context.Context) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).Find(&projects).Error
	return projects, err
}

func (r *projectRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Metrics and goals go with the project via ON DELETE CASCADE.
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{}).Error
}
