package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/integrations"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProviderOutcome is one provider's slot in a sync report: either a result
// payload or an error message, never both.
type ProviderOutcome struct {
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// SyncReport is the per-provider result of one SyncProject run. Providers
// without configured credentials are absent from Results entirely.
type SyncReport struct {
	ProjectID uuid.UUID                  `json:"project_id"`
	Results   map[string]ProviderOutcome `json:"results"`
	SyncedAt  time.Time                  `json:"synced_at"`
}

type SyncService interface {
	// SyncProject fetches metrics for every configured provider matching
	// the optional filter ("" means all). One provider failing never blocks
	// another; failures land in the report, not in the returned error.
	SyncProject(ctx context.Context, projectID uuid.UUID, providerFilter string) (*SyncReport, error)
	// SyncAll is the batch entry point: every project with at least one
	// pull-provider credential pair, sequentially. Failures are logged and
	// skipped.
	SyncAll(ctx context.Context) error
	// UpdateShipStreaks recomputes and persists the ship streak for every
	// project.
	UpdateShipStreaks(ctx context.Context) error
}

type syncService struct {
	projects  repo.ProjectRepo
	metrics   repo.MetricRepo
	github    *integrations.GitHubClient
	twitter   *integrations.TwitterClient
	plausible *integrations.PlausibleClient
	log       *zap.Logger
}

func NewSyncService(
	projects repo.ProjectRepo,
	metrics repo.MetricRepo,
	github *integrations.GitHubClient,
	twitter *integrations.TwitterClient,
	plausible *integrations.PlausibleClient,
	log *zap.Logger,
) SyncService {
	return &syncService{
		projects:  projects,
		metrics:   metrics,
		github:    github,
		twitter:   twitter,
		plausible: plausible,
		log:       log,
	}
}

func (s *syncService) SyncProject(ctx context.Context, projectID uuid.UUID, providerFilter string) (*SyncReport, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	report := &SyncReport{
		ProjectID: projectID,
		Results:   map[string]ProviderOutcome{},
		SyncedAt:  time.Now().UTC(),
	}

	wants := func(p string) bool { return providerFilter == "" || providerFilter == p }

	if wants(integrations.ProviderGitHub) && project.HasGitHub() {
		report.Results[integrations.ProviderGitHub] = s.outcome(
			s.fetchGitHub(ctx, project))
	}
	if wants(integrations.ProviderTwitter) && project.HasTwitter() {
		report.Results[integrations.ProviderTwitter] = s.outcome(
			s.fetchTwitter(ctx, project))
	}
	if wants(integrations.ProviderPlausible) && project.HasPlausible() {
		report.Results[integrations.ProviderPlausible] = s.outcome(
			s.fetchPlausible(ctx, project))
	}

	if err := s.updateGrowthRate(ctx, projectID); err != nil {
		s.log.Error("growth rate update failed",
			zap.String("project_id", projectID.String()), zap.Error(err))
	}

	return report, nil
}

func (s *syncService) outcome(data interface{}, err error) ProviderOutcome {
	if err != nil {
		return ProviderOutcome{Error: err.Error()}
	}
	return ProviderOutcome{Data: data}
}

func (s *syncService) SyncAll(ctx context.Context) error {
	s.log.Info("starting metrics sync")

	projects, err := s.projects.ListSyncable(ctx)
	if err != nil {
		return err
	}

	for _, project := range projects {
		if project.HasGitHub() {
			if _, err := s.fetchGitHub(ctx, project); err != nil {
				s.logFetchErr(project, integrations.ProviderGitHub, err)
			}
		}
		if project.HasTwitter() {
			if _, err := s.fetchTwitter(ctx, project); err != nil {
				s.logFetchErr(project, integrations.ProviderTwitter, err)
			}
		}
		if project.HasPlausible() {
			if _, err := s.fetchPlausible(ctx, project); err != nil {
				s.logFetchErr(project, integrations.ProviderPlausible, err)
			}
		}
	}

	all, err := s.projects.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, project := range all {
		if err := s.updateGrowthRate(ctx, project.ID); err != nil {
			s.log.Error("growth rate update failed",
				zap.String("project_id", project.ID.String()), zap.Error(err))
		}
	}

	s.log.Info("metrics sync completed", zap.Int("projects", len(projects)))
	return nil
}

func (s *syncService) logFetchErr(project *model.Project, provider string, err error) {
	var perr *integrations.ProviderError
	status := 0
	if errors.As(err, &perr) {
		status = perr.StatusCode
	}
	s.log.Error("provider sync failed",
		zap.String("project_id", project.ID.String()),
		zap.String("project", project.Name),
		zap.String("provider", provider),
		zap.Int("upstream_status", status),
		zap.Error(err))
}

// fetchGitHub writes exactly two samples, commit count and PR count, with a
// shared recorded-at timestamp.
func (s *syncService) fetchGitHub(ctx context.Context, project *model.Project) (*integrations.RepoActivity, error) {
	activity, err := s.github.FetchRepoActivity(ctx, project.GitHubAccessToken, project.GitHubRepo)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	samples := []*model.Metric{
		{
			ProjectID:  project.ID,
			Type:       model.MetricGitHubCommits,
			Value:      float64(activity.Commits),
			Metadata:   datatypes.JSONMap{"period": "30d", "repo": activity.Repo},
			RecordedAt: now,
		},
		{
			ProjectID:  project.ID,
			Type:       model.MetricGitHubPRs,
			Value:      float64(activity.PRs),
			Metadata:   datatypes.JSONMap{"repo": activity.Repo},
			RecordedAt: now,
		},
	}
	if err := s.metrics.CreateBatch(ctx, samples); err != nil {
		return nil, err
	}
	return activity, nil
}

func (s *syncService) fetchTwitter(ctx context.Context, project *model.Project) (*integrations.UserMetrics, error) {
	um, err := s.twitter.FetchUserMetrics(ctx, project.TwitterAccessToken, project.TwitterHandle)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	samples := []*model.Metric{
		{
			ProjectID: project.ID,
			Type:      model.MetricTwitterFollowers,
			Value:     float64(um.Followers),
			Metadata: datatypes.JSONMap{
				"handle":          um.Handle,
				"following_count": um.Following,
				"tweet_count":     um.Tweets,
			},
			RecordedAt: now,
		},
		{
			ProjectID: project.ID,
			Type:      model.MetricTweetCount,
			Value:     float64(um.Tweets),
			Metadata: datatypes.JSONMap{
				"handle":       um.Handle,
				"listed_count": um.Listed,
			},
			RecordedAt: now,
		},
	}
	if err := s.metrics.CreateBatch(ctx, samples); err != nil {
		return nil, err
	}
	return um, nil
}

// fetchPlausible writes one page-views sample; the traffic-source breakdown
// stays in the returned stats and is never persisted.
func (s *syncService) fetchPlausible(ctx context.Context, project *model.Project) (*integrations.SiteStats, error) {
	stats, err := s.plausible.FetchSiteStats(ctx, project.PlausibleAPIKey, project.PlausibleSiteID)
	if err != nil {
		return nil, err
	}

	sample := &model.Metric{
		ProjectID: project.ID,
		Type:      model.MetricPageViews,
		Value:     float64(stats.Pageviews),
		Metadata: datatypes.JSONMap{
			"site_id":  stats.SiteID,
			"period":   "7d",
			"visitors": stats.Visitors,
		},
		RecordedAt: time.Now().UTC(),
	}
	if err := s.metrics.Create(ctx, sample); err != nil {
		return nil, err
	}
	return stats, nil
}

// updateGrowthRate annotates the newest MRR sample with the percentage
// change against the previous one. With fewer than two samples, or a
// previous value of zero (the rate would be undefined), the annotation is
// skipped.
func (s *syncService) updateGrowthRate(ctx context.Context, projectID uuid.UUID) error {
	mrr, err := s.metrics.ListByType(ctx, projectID, model.MetricMRR, 2)
	if err != nil {
		return err
	}
	if len(mrr) != 2 {
		return nil
	}

	current, previous := mrr[0].Value, mrr[1].Value
	if previous == 0 {
		s.log.Debug("growth rate undefined for zero previous MRR",
			zap.String("project_id", projectID.String()))
		return nil
	}

	rate := math.Round((current-previous)/previous*100*100) / 100
	return s.metrics.MergeMetadata(ctx, mrr[0].ID, map[string]interface{}{
		"growth_rate":    rate,
		"previous_value": previous,
	})
}

func (s *syncService) UpdateShipStreaks(ctx context.Context) error {
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, project := range projects {
		streak, err := s.shipStreak(ctx, project.ID)
		if err != nil {
			s.log.Error("ship streak update failed",
				zap.String("project_id", project.ID.String()), zap.Error(err))
			continue
		}

		sample := &model.Metric{
			ProjectID:  project.ID,
			Type:       model.MetricShipStreak,
			Value:      float64(streak),
			Metadata:   datatypes.JSONMap{"metric_type": "ship_streak"},
			RecordedAt: time.Now().UTC(),
		}
		if err := s.metrics.Create(ctx, sample); err != nil {
			s.log.Error("ship streak persist failed",
				zap.String("project_id", project.ID.String()), zap.Error(err))
			continue
		}

		s.log.Info("ship streak updated",
			zap.String("project", project.Name), zap.Int("streak", streak))
	}
	return nil
}

// shipStreak counts consecutive days with at least one positive commit
// sample, walking backward from today. A gap on today alone does not break
// the streak; any gap on an earlier day terminates the scan.
func (s *syncService) shipStreak(ctx context.Context, projectID uuid.UUID) (int, error) {
	since := time.Now().AddDate(0, 0, -30)
	samples, err := s.metrics.ListByTypeSince(ctx, projectID, model.MetricGitHubCommits, since)
	if err != nil {
		return 0, err
	}

	active := make(map[string]bool, len(samples))
	for _, m := range samples {
		if m.Value > 0 {
			active[m.RecordedAt.Local().Format("2006-01-02")] = true
		}
	}

	today := time.Now()
	streak := 0
	for i := 0; i < 30; i++ {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		if active[day] {
			streak++
		} else if i > 0 {
			break
		}
	}
	return streak, nil
}
