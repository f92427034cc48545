package knowledge

import (
	"time"

	"github.com/prepdeck/backend/internal/id"
)

// Default mastery values substituted when a user has no profile for a
// category. ContentMastery defaults to 0.5 ("unknown") so that an absent
// profile is distinguishable from one that legitimately sits near zero.
const (
	DefaultConceptMastery = 0.0
	DefaultContentMastery = 0.5
)

// Profile tracks a user's mastery of a single category. It is created
// lazily on the first attempt in that category and never deleted.
type Profile struct {
	ID             string
	UserID         string
	CategoryID     string
	CorrectCount   int
	AttemptCount   int
	LastAttemptAt  time.Time
	ConceptMastery *float64 // 0–1, nil until estimated
	ContentMastery *float64 // 0–1, nil until estimated
}

// New creates an empty Profile for a (user, category) pair.
func New(userID, categoryID string) *Profile {
	return &Profile{
		ID:         id.New(),
		UserID:     userID,
		CategoryID: categoryID,
	}
}

// ResolvedConceptMastery returns the concept-mastery estimate, falling
// back to the no-history default.
func (p *Profile) ResolvedConceptMastery() float64 {
	if p == nil || p.ConceptMastery == nil {
		return DefaultConceptMastery
	}
	return *p.ConceptMastery
}

// ResolvedContentMastery returns the content-mastery estimate, falling
// back to the no-history default.
func (p *Profile) ResolvedContentMastery() float64 {
	if p == nil || p.ContentMastery == nil {
		return DefaultContentMastery
	}
	return *p.ContentMastery
}

// RecordAttempt folds one answer outcome into the profile. The mastery
// estimates blend the latest outcome with the running estimate, weighting
// the latest attempt at 0.6 for the fine-grained concept estimate and 0.3
// for the slower-moving content estimate.
func (p *Profile) RecordAttempt(correct bool, at time.Time) {
	p.AttemptCount++
	if correct {
		p.CorrectCount++
	}
	p.LastAttemptAt = at

	outcome := 0.0
	if correct {
		outcome = 1.0
	}
	p.ConceptMastery = blend(p.ConceptMastery, DefaultConceptMastery, outcome, 0.6)
	p.ContentMastery = blend(p.ContentMastery, DefaultContentMastery, outcome, 0.3)
}

func blend(current *float64, initial, outcome, latestWeight float64) *float64 {
	prev := initial
	if current != nil {
		prev = *current
	}
	v := latestWeight*outcome + (1-latestWeight)*prev
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return &v
}
