package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/domain/response"
)

// refreshWindow bounds how much response history the nightly refresh
// reads per profile.
const refreshWindow = 30 * 24 * time.Hour

// ProfileStore is the subset of the store the refresh job reads and writes.
type ProfileStore interface {
	ListProfiles(ctx context.Context) ([]*knowledge.Profile, error)
	UpsertProfile(ctx context.Context, p *knowledge.Profile) error
	ResponsesForUserCategory(ctx context.Context, userID, categoryID string, since time.Time) ([]response.UserResponse, error)
}

// Scheduler runs periodic maintenance jobs. The selection engine itself
// stays stateless; this only re-derives the stored mastery estimates from
// recent response history so they track reality between practice calls.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     ProfileStore
	logger    *slog.Logger
}

// New creates a Scheduler over the given store.
func New(s ProfileStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     s,
		logger:    logger,
	}
}

// Start schedules the nightly mastery refresh and runs the scheduler in
// the background.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("03:00").Do(s.refreshMasteryEstimates)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refreshMasteryEstimates recomputes the content-mastery estimate of every
// profile from its recent accuracy. Concept mastery keeps its per-answer
// blended value; content mastery is the slower aggregate and benefits from
// a periodic ground-truth pass over the raw events.
func (s *Scheduler) refreshMasteryEstimates() {
	ctx := context.Background()
	since := time.Now().UTC().Add(-refreshWindow)

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		s.logger.Error("mastery refresh: failed to list profiles", "error", err)
		return
	}

	refreshed := 0
	for _, p := range profiles {
		responses, err := s.store.ResponsesForUserCategory(ctx, p.UserID, p.CategoryID, since)
		if err != nil {
			s.logger.Error("mastery refresh: failed to load responses",
				"user_id", p.UserID, "category_id", p.CategoryID, "error", err)
			continue
		}
		if len(responses) == 0 {
			continue
		}

		correct := 0
		for _, r := range responses {
			if r.Correct {
				correct++
			}
		}
		accuracy := float64(correct) / float64(len(responses))

		p.ContentMastery = &accuracy
		if err := s.store.UpsertProfile(ctx, p); err != nil {
			s.logger.Error("mastery refresh: failed to save profile",
				"user_id", p.UserID, "category_id", p.CategoryID, "error", err)
			continue
		}
		refreshed++
	}

	s.logger.Info("mastery refresh complete", "profiles", len(profiles), "refreshed", refreshed)
}
