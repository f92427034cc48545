// internal/service/answers.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/domain/response"
	"github.com/prepdeck/backend/internal/store"
	"github.com/prepdeck/backend/internal/worker"
)

// AnswerService records answer submissions. The response row is written
// synchronously (it is the append-only source of truth for the selection
// engine); the knowledge-profile update runs on the worker pool so the
// submitting request does not wait on it.
type AnswerService struct {
	store  store.Store
	pool   *worker.Pool[error]
	logger *slog.Logger
}

// SubmitResult is what the caller learns immediately: whether the chosen
// answer was correct and what the correct option was.
type SubmitResult struct {
	Correct       bool
	CorrectAnswer string
}

// NewAnswerService creates an AnswerService and starts draining the pool's
// results, logging any profile-update failures.
func NewAnswerService(s store.Store, pool *worker.Pool[error], logger *slog.Logger) *AnswerService {
	svc := &AnswerService{
		store:  s,
		pool:   pool,
		logger: logger,
	}
	go svc.drain()
	return svc
}

func (s *AnswerService) drain() {
	for res := range s.pool.Results() {
		if res.Output != nil {
			s.logger.Error("profile update failed", "question_id", res.JobID, "error", res.Output)
		}
	}
}

// Submit checks the answer against the question's correct option, appends
// the response event and schedules the profile update.
func (s *AnswerService) Submit(ctx context.Context, userID, questionID, answer string) (*SubmitResult, error) {
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	correctAnswer, err := q.CorrectAnswer()
	if err != nil {
		return nil, err
	}
	correct := answer == correctAnswer

	now := time.Now().UTC()
	resp := response.New(userID, questionID, answer, correct, now)
	if err := s.store.SaveResponse(ctx, resp); err != nil {
		return nil, err
	}

	categoryID := q.CategoryID
	s.pool.Submit(questionID, func() error {
		// Detached from the request context: the update must finish even
		// if the originating request has already returned.
		return s.updateProfile(context.Background(), userID, categoryID, correct, now)
	})

	return &SubmitResult{Correct: correct, CorrectAnswer: correctAnswer}, nil
}

// updateProfile folds one outcome into the (user, category) profile,
// creating it lazily on the first attempt.
func (s *AnswerService) updateProfile(ctx context.Context, userID, categoryID string, correct bool, at time.Time) error {
	profile, err := s.store.GetProfile(ctx, userID, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		profile = knowledge.New(userID, categoryID)
	} else if err != nil {
		return err
	}

	profile.RecordAttempt(correct, at)
	return s.store.UpsertProfile(ctx, profile)
}
