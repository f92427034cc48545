package selection

import (
	"fmt"

	"github.com/prepdeck/backend/internal/domain/category"
	"github.com/prepdeck/backend/internal/domain/question"
)

// SelectedQuestion is one sampled question prepared for the caller:
// options pre-split into an ordered list (the first element is the correct
// answer — callers must not leak that positional invariant to end users),
// plus the category, resolved mastery values and the derived signals for
// display or logging.
type SelectedQuestion struct {
	Question question.Question
	Options  []string
	Category category.Category

	ConceptMastery float64
	ContentMastery float64

	IncorrectStreak    int
	PassesSeenTimes    bool
	PassesCorrectTimes bool

	Weight float64
}

// Result is one page of sampled questions. TotalPages is computed over the
// full filtered candidate count, not the sampled page: repeated calls with
// the same filters can return different question sets at the same page
// number, because this is a sampling engine, not a stable paginator.
type Result struct {
	Questions   []SelectedQuestion
	TotalPages  int
	CurrentPage int
}

// assemble formats the sampled candidates into a Result. A question whose
// options field cannot be parsed is a data-integrity fault and surfaces as
// an error rather than a silently malformed entry.
func assemble(candidates []annotated, weights []float64, picked []int, totalCandidates int, t Tuning) (*Result, error) {
	questions := make([]SelectedQuestion, 0, len(picked))
	for _, idx := range picked {
		c := candidates[idx]
		opts, err := question.ParseOptions(c.Question.Options)
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", c.Question.ID, err)
		}
		questions = append(questions, SelectedQuestion{
			Question:           c.Question,
			Options:            opts,
			Category:           c.Category,
			ConceptMastery:     c.ConceptMastery,
			ContentMastery:     c.ContentMastery,
			IncorrectStreak:    c.IncorrectStreak,
			PassesSeenTimes:    c.PassesSeenTimes,
			PassesCorrectTimes: c.PassesCorrectTimes,
			Weight:             weights[idx],
		})
	}

	totalPages := (totalCandidates + t.PageSize - 1) / t.PageSize

	return &Result{
		Questions:   questions,
		TotalPages:  totalPages,
		CurrentPage: t.Page,
	}, nil
}
