package store

import (
	"context"
	"errors"
	"time"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/domain/question"
	"github.com/prepdeck/backend/internal/domain/response"
	"github.com/prepdeck/backend/internal/selection"
)

var (
	ErrNotFound = errors.New("not found")
)

// Store is the persistence surface consumed by the services and the
// selection engine. SQLiteStore is the only implementation; the interface
// exists so handlers and services can be tested against fakes.
type Store interface {
	selection.CandidateSource

	// Categories
	SaveCategory(ctx context.Context, cat *category.Category) error
	GetCategory(ctx context.Context, id string) (*category.Category, error)
	ListCategories(ctx context.Context) ([]*category.Category, error)
	UpdateCategory(ctx context.Context, cat *category.Category) error
	// DeleteCategory removes the category with its questions, their
	// responses and its knowledge profiles.
	DeleteCategory(ctx context.Context, id string) error

	// Questions
	SaveQuestion(ctx context.Context, q *question.Question) error
	GetQuestion(ctx context.Context, id string) (*question.Question, error)
	ListQuestionsByCategory(ctx context.Context, categoryID string) ([]*question.Question, error)
	// DeleteQuestion removes the question and its recorded responses.
	DeleteQuestion(ctx context.Context, id string) error

	// Knowledge profiles
	GetProfile(ctx context.Context, userID, categoryID string) (*knowledge.Profile, error)
	UpsertProfile(ctx context.Context, p *knowledge.Profile) error
	ListProfiles(ctx context.Context) ([]*knowledge.Profile, error)

	// Responses (append-only)
	SaveResponse(ctx context.Context, r *response.UserResponse) error
	ResponsesForUserCategory(ctx context.Context, userID, categoryID string, since time.Time) ([]response.UserResponse, error)
}
