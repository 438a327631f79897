package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/projectcatalog/internal/domain/model"
	"github.com/ericfisherdev/projectcatalog/internal/domain/port/driven"
)

// ErrNoGitHubClient is returned by a refresh when no GitHub client is configured.
var ErrNoGitHubClient = errors.New("no github client configured")

// refreshRequest represents a manual refresh trigger.
type refreshRequest struct {
	owner string
	name  string
	done  chan error
}

// RefreshService periodically re-reads project metadata from GitHub and
// stamps last_scored. Each project is rescheduled according to how recently
// its repository was pushed to.
type RefreshService struct {
	store     driven.ProjectStore
	provider  *GitHubClientProvider
	interval  time.Duration
	refreshCh chan refreshRequest
	now       func() time.Time

	mu        sync.Mutex
	schedules map[int64]*projectSchedule
}

// NewRefreshService creates a RefreshService. interval is how often the loop
// wakes to look for projects whose refresh is due.
func NewRefreshService(store driven.ProjectStore, provider *GitHubClientProvider, interval time.Duration) *RefreshService {
	return &RefreshService{
		store:     store,
		provider:  provider,
		interval:  interval,
		refreshCh: make(chan refreshRequest),
		now:       func() time.Time { return time.Now().UTC() },
		schedules: make(map[int64]*projectSchedule),
	}
}

// Start runs the refresh loop. It refreshes due projects immediately, then on
// every tick, and serves manual refresh requests. Start blocks until the
// context is canceled.
func (s *RefreshService) Start(ctx context.Context) {
	if err := s.refreshDue(ctx); err != nil {
		slog.Error("initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh service stopped")
			return
		case <-ticker.C:
			if err := s.refreshDue(ctx); err != nil {
				slog.Error("refresh cycle failed", "error", err)
			}
		case req := <-s.refreshCh:
			req.done <- s.handleRefresh(ctx, req)
		}
	}
}

// RefreshProject triggers an immediate refresh of owner/name, bypassing its
// schedule. It blocks until the refresh completes or the context is canceled.
func (s *RefreshService) RefreshProject(ctx context.Context, owner, name string) error {
	done := make(chan error, 1)
	req := refreshRequest{owner: owner, name: name, done: done}

	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule returns the current refresh schedule for a project.
func (s *RefreshService) Schedule(projectID int64) (ScheduleInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[projectID]
	if !ok {
		return ScheduleInfo{}, false
	}
	return ScheduleInfo{
		Tier:          sched.tier,
		NextRefreshAt: sched.nextRefreshAt,
		LastRefreshed: sched.lastRefreshed,
	}, true
}

// refreshDue refreshes every project whose schedule has elapsed. Projects
// never seen before are due immediately.
func (s *RefreshService) refreshDue(ctx context.Context) error {
	if !s.provider.HasClient() {
		slog.Debug("refresh skipped, no github client configured")
		return nil
	}

	start := time.Now()

	projects, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}

	var refreshed, failed int
	for _, p := range projects {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !s.isDue(p.ID) {
			continue
		}

		if err := s.refreshOne(ctx, p); err != nil {
			slog.Error("project refresh failed", "project", p.FullName(), "error", err)
			failed++
			continue
		}
		refreshed++
	}

	slog.Info("refresh cycle complete",
		"projects", len(projects),
		"refreshed", refreshed,
		"errors", failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

func (s *RefreshService) isDue(projectID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[projectID]
	return !ok || !s.now().Before(sched.nextRefreshAt)
}

// refreshOne fetches metadata for a single project, stores it and stamps
// last_scored. A repository GitHub no longer knows is parked in the stale tier;
// any other failure waits one interval of the project's current tier.
func (s *RefreshService) refreshOne(ctx context.Context, p model.Project) error {
	client := s.provider.Get()
	if client == nil {
		return ErrNoGitHubClient
	}

	now := s.now()

	meta, err := client.FetchRepository(ctx, p.Owner, p.Name)
	if errors.Is(err, driven.ErrGitHubRepoNotFound) {
		s.reschedule(p.ID, TierStale, now)
		return err
	}
	if err != nil {
		s.retryLater(p.ID, now)
		return err
	}

	if err := s.store.UpdateMetadata(ctx, p.ID, *meta); err != nil {
		s.retryLater(p.ID, now)
		return err
	}
	if err := s.store.MarkScored(ctx, p.ID, now); err != nil {
		s.retryLater(p.ID, now)
		return err
	}

	tier := classifyActivity(meta.PushedAt, now)
	s.reschedule(p.ID, tier, now)

	slog.Debug("project refreshed",
		"project", p.FullName(),
		"language", meta.MainLanguage,
		"tier", tier.String(),
	)
	return nil
}

func (s *RefreshService) reschedule(projectID int64, tier ActivityTier, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules[projectID] = &projectSchedule{
		tier:          tier,
		nextRefreshAt: now.Add(tierInterval(tier)),
		lastRefreshed: now,
	}
}

// retryLater pushes a failed project's next attempt out by its current tier's
// interval, or the active interval if it has never been scheduled. The tier
// and last successful refresh are kept.
func (s *RefreshService) retryLater(projectID int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[projectID]
	if !ok {
		sched = &projectSchedule{tier: TierActive}
		s.schedules[projectID] = sched
	}
	sched.nextRefreshAt = now.Add(tierInterval(sched.tier))
}

// handleRefresh dispatches a manual refresh request.
func (s *RefreshService) handleRefresh(ctx context.Context, req refreshRequest) error {
	if !s.provider.HasClient() {
		return ErrNoGitHubClient
	}

	p, err := s.store.GetByOwnerAndName(ctx, req.owner, req.name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("refresh project %s/%s: %w", req.owner, req.name, driven.ErrProjectNotFound)
	}

	return s.refreshOne(ctx, *p)
}
