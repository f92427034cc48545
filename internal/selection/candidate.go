package selection

import (
	"context"
	"time"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/knowledge"
	"github.com/prepdeck/backend/internal/domain/question"
	"github.com/prepdeck/backend/internal/domain/response"
)

// Candidate is one question joined with the context the engine needs to
// score it: its category, the requesting user's knowledge profile for that
// category (nil when the user has no history there), and the user's
// responses to this exact question inside the recency window.
type Candidate struct {
	Question  question.Question
	Category  category.Category
	Profile   *knowledge.Profile
	Responses []response.UserResponse
}

// CandidateSource supplies candidates for a selection call. Retrieval is
// exhaustive over the filtered set; pagination happens after sampling.
// Implementations must propagate storage errors unchanged and treat an
// empty result as a valid outcome.
type CandidateSource interface {
	// Candidates returns every question matching the structural filters,
	// joined per the Candidate contract. Only responses for userID created
	// at or after since are attached. The engine derives since from its own
	// clock so the fetch window and the analysis cutoffs agree.
	Candidates(ctx context.Context, userID string, f Filters, since time.Time) ([]Candidate, error)
}

// annotated is a candidate plus the derived exposure and streak signals.
type annotated struct {
	Candidate

	RecentResponseCount int
	RecentCorrectCount  int
	PassesSeenTimes     bool
	PassesCorrectTimes  bool
	IncorrectStreak     int

	ConceptMastery float64
	ContentMastery float64
}
