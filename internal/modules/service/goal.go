package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/repo"
	"gorm.io/gorm"
)

type GoalService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateGoalInput) (*model.Goal, error)
	ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]*model.Goal, error)
	Update(ctx context.Context, userID, goalID uuid.UUID, in UpdateGoalInput) (*model.Goal, error)
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
}

type goalService struct {
	goals    repo.GoalRepo
	projects repo.ProjectRepo
}

func NewGoalService(goals repo.GoalRepo, projects repo.ProjectRepo) GoalService {
	return &goalService{goals: goals, projects: projects}
}

type CreateGoalInput struct {
	ProjectID   uuid.UUID
	Title       string
	Description string
	Target      float64
	Unit        string
	Deadline    *time.Time
}

func (s *goalService) Create(ctx context.Context, userID uuid.UUID, in CreateGoalInput) (*model.Goal, error) {
	if _, err := s.ownedProject(ctx, userID, in.ProjectID); err != nil {
		return nil, err
	}

	g := &model.Goal{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Target:      in.Target,
		Unit:        in.Unit,
		Deadline:    in.Deadline,
	}
	if err := s.goals.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *goalService) ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]*model.Goal, error) {
	if _, err := s.ownedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.goals.ListByProject(ctx, projectID)
}

// UpdateGoalInput is the explicit allow-list of mutable goal fields.
type UpdateGoalInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Target      *float64   `json:"target"`
	Current     *float64   `json:"current"`
	Unit        *string    `json:"unit"`
	Deadline    *time.Time `json:"deadline"`
}

func (s *goalService) Update(ctx context.Context, userID, goalID uuid.UUID, in UpdateGoalInput) (*model.Goal, error) {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Target != nil {
		fields["target"] = *in.Target
	}
	if in.Current != nil {
		fields["current"] = *in.Current
	}
	if in.Unit != nil {
		fields["unit"] = *in.Unit
	}
	if in.Deadline != nil {
		fields["deadline"] = *in.Deadline
	}

	if len(fields) > 0 {
		if err := s.goals.Update(ctx, goal.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.goals.GetByID(ctx, goal.ID)
}

func (s *goalService) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return err
	}
	return s.goals.Delete(ctx, goal.ID)
}

func (s *goalService) ownedProject(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.projects.GetByIDForUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// ownedGoal checks goal ownership through the parent project.
func (s *goalService) ownedGoal(ctx context.Context, userID, goalID uuid.UUID) (*model.Goal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.Project == nil || goal.Project.UserID != userID {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}
