package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"gorm.io/gorm"
)

type GoalRepo interface {
	Create(ctx context.Context, g *model.Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Goal, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Goal, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type goalRepo struct{ db *gorm.DB }

func NewGoalRepo(db *gorm.DB) GoalRepo {
	return &goalRepo{db: db}
}

func (r *goalRepo) Create(ctx context.Context, g *model.Goal) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *goalRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Goal, error) {
	var g model.Goal
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *goalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Goal, error) {
	var goals []*model.Goal
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

func (r *goalRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Goal{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *goalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Goal{}).Error
}
