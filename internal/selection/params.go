package selection

import "errors"

// Defaults applied by Tuning.normalize when a parameter is unset or
// out of range.
const (
	DefaultSeenTimes            = 3
	DefaultIntervalTotalHours   = 72
	DefaultIntervalCorrectHours = 72
	DefaultPage                 = 1
	DefaultPageSize             = 10

	DefaultStreakWeight     = 0.25
	DefaultMasteryWeight    = 0.5
	DefaultDifficultyWeight = 0.05
	DefaultFrequencyWeight  = 0.2
)

// Filters narrow the candidate pool structurally. Zero-valued fields are
// no-ops: an empty set or nil ID leaves that dimension unconstrained.
type Filters struct {
	CategoryID *string
	PassageID  *string
	Subjects   []string
	Contents   []string
	Concepts   []string
	TypeTags   []string
}

// Tuning carries the caller-configurable knobs of a selection call.
// The four *ProbWeight fields are relative weights and need not sum to 1.
type Tuning struct {
	DesiredDifficulty    *int
	SeenTimes            int
	IntervalTotalHours   int
	IntervalCorrectHours int

	IncorrectStreakProbWeight       float64
	ConceptContentMasteryProbWeight float64
	DesiredDifficultyProbWeight     float64
	TestFrequencyProbWeight         float64

	Page     int
	PageSize int
}

// DefaultTuning returns a Tuning with every parameter at its default.
func DefaultTuning() Tuning {
	return Tuning{
		SeenTimes:            DefaultSeenTimes,
		IntervalTotalHours:   DefaultIntervalTotalHours,
		IntervalCorrectHours: DefaultIntervalCorrectHours,

		IncorrectStreakProbWeight:       DefaultStreakWeight,
		ConceptContentMasteryProbWeight: DefaultMasteryWeight,
		DesiredDifficultyProbWeight:     DefaultDifficultyWeight,
		TestFrequencyProbWeight:         DefaultFrequencyWeight,

		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

var ErrNegativeWeight = errors.New("probability weights must not be negative")

// normalize replaces non-positive counts, intervals and paging values with
// their defaults and rejects negative weights. A zero weight is legal: it
// silences that component.
func (t Tuning) normalize() (Tuning, error) {
	if t.IncorrectStreakProbWeight < 0 ||
		t.ConceptContentMasteryProbWeight < 0 ||
		t.DesiredDifficultyProbWeight < 0 ||
		t.TestFrequencyProbWeight < 0 {
		return t, ErrNegativeWeight
	}
	if t.SeenTimes <= 0 {
		t.SeenTimes = DefaultSeenTimes
	}
	if t.IntervalTotalHours <= 0 {
		t.IntervalTotalHours = DefaultIntervalTotalHours
	}
	if t.IntervalCorrectHours <= 0 {
		t.IntervalCorrectHours = DefaultIntervalCorrectHours
	}
	if t.Page <= 0 {
		t.Page = DefaultPage
	}
	if t.PageSize <= 0 {
		t.PageSize = DefaultPageSize
	}
	return t, nil
}

// windowHours is the lookback bound for the response-history fetch: wide
// enough to serve both the exposure and the correctness checks.
func (t Tuning) windowHours() int {
	if t.IntervalTotalHours > t.IntervalCorrectHours {
		return t.IntervalTotalHours
	}
	return t.IntervalCorrectHours
}
