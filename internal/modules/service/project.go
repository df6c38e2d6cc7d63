package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/repo"
	"gorm.io/gorm"
)

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]*ProjectListItem, error)
	Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
}

type projectService struct {
	projects repo.ProjectRepo
	metrics  repo.MetricRepo
}

func NewProjectService(projects repo.ProjectRepo, metrics repo.MetricRepo) ProjectService {
	return &projectService{projects: projects, metrics: metrics}
}

type CreateProjectInput struct {
	UserID      uuid.UUID
	Name        string
	Slug        string
	Description string
	Domain      string
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if _, err := s.projects.GetBySlug(ctx, in.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Project{
		UserID:      in.UserID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Domain:      in.Domain,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.projects.GetByIDForUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

type ProjectListItem struct {
	*model.Project
	MetricCount int64 `json:"metric_count"`
}

func (s *projectService) List(ctx context.Context, userID uuid.UUID) ([]*ProjectListItem, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]*ProjectListItem, 0, len(projects))
	for _, p := range projects {
		count, err := s.metrics.CountByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, &ProjectListItem{Project: p, MetricCount: count})
	}
	return items, nil
}

// UpdateProjectInput is the explicit allow-list of mutable project fields.
// Anything not named here cannot be changed through a settings update, so a
// request body can never mass-assign arbitrary columns.
type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Domain      *string `json:"domain"`
	IsPublic    *bool   `json:"is_public"`

	GitHubRepo         *string `json:"github_repo"`
	GitHubAccessToken  *string `json:"github_access_token"`
	TwitterHandle      *string `json:"twitter_handle"`
	TwitterAccessToken *string `json:"twitter_access_token"`
	PlausibleSiteID    *string `json:"plausible_site_id"`
	PlausibleAPIKey    *string `json:"plausible_api_key"`
	StripeAccountID    *string `json:"stripe_account_id"`
}

func (in UpdateProjectInput) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(col string, v interface{}, ok bool) {
		if ok {
			fields[col] = v
		}
	}
	set("name", deref(in.Name), in.Name != nil)
	set("description", deref(in.Description), in.Description != nil)
	set("domain", deref(in.Domain), in.Domain != nil)
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
	}
	set("github_repo", deref(in.GitHubRepo), in.GitHubRepo != nil)
	set("github_access_token", deref(in.GitHubAccessToken), in.GitHubAccessToken != nil)
	set("twitter_handle", deref(in.TwitterHandle), in.TwitterHandle != nil)
	set("twitter_access_token", deref(in.TwitterAccessToken), in.TwitterAccessToken != nil)
	set("plausible_site_id", deref(in.PlausibleSiteID), in.PlausibleSiteID != nil)
	set("plausible_api_key", deref(in.PlausibleAPIKey), in.PlausibleAPIKey != nil)
	set("stripe_account_id", deref(in.StripeAccountID), in.StripeAccountID != nil)
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *projectService) Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error) {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}

	fields := in.fields()
	if len(fields) > 0 {
		if err := s.projects.Update(ctx, projectID, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, userID, projectID)
}

func (s *projectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return err
	}
	return s.projects.Delete(ctx, projectID)
}
