package selection

import (
	"sort"
	"time"
)

// analyze derives per-candidate exposure and streak signals from the
// already-fetched response window. The two pass flags are advisory: they
// ride along to the caller but never exclude a candidate from the pool.
func analyze(now time.Time, candidates []Candidate, t Tuning) []annotated {
	totalCutoff := now.Add(-time.Duration(t.IntervalTotalHours) * time.Hour)
	correctCutoff := now.Add(-time.Duration(t.IntervalCorrectHours) * time.Hour)

	out := make([]annotated, len(candidates))
	for i, c := range candidates {
		a := annotated{Candidate: c}

		for _, r := range c.Responses {
			if !r.CreatedAt.Before(totalCutoff) {
				a.RecentResponseCount++
			}
			if r.Correct && !r.CreatedAt.Before(correctCutoff) {
				a.RecentCorrectCount++
			}
		}
		a.PassesSeenTimes = a.RecentResponseCount <= t.SeenTimes
		a.PassesCorrectTimes = a.RecentCorrectCount < 1
		a.IncorrectStreak = incorrectStreak(c)

		a.ConceptMastery = c.Profile.ResolvedConceptMastery()
		a.ContentMastery = c.Profile.ResolvedContentMastery()

		out[i] = a
	}
	return out
}

// incorrectStreak counts consecutive incorrect responses from the most
// recent backwards, stopping at the first correct one. With no correct
// response in the window it counts every fetched incorrect response.
func incorrectStreak(c Candidate) int {
	sorted := make([]int, len(c.Responses))
	for i := range sorted {
		sorted[i] = i
	}
	sort.Slice(sorted, func(i, j int) bool {
		return c.Responses[sorted[i]].CreatedAt.After(c.Responses[sorted[j]].CreatedAt)
	})

	streak := 0
	for _, idx := range sorted {
		if c.Responses[idx].Correct {
			break
		}
		streak++
	}
	return streak
}
