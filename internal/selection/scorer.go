package selection

// incorrectStreakBoost is the fixed multiplier applied to the raw streak
// before normalization.
const incorrectStreakBoost = 2.0

// computeWeights turns the annotated candidates into one composite weight
// each. Every signal is normalized by its maximum over the candidate set
// before the weighted sum, so the result is a relative weight consumed
// only comparatively by the sampler.
func computeWeights(candidates []annotated, t Tuning) []float64 {
	n := len(candidates)
	if n == 0 {
		return nil
	}

	streakRaw := make([]float64, n)
	conceptRaw := make([]float64, n)
	contentRaw := make([]float64, n)
	difficultyRaw := make([]float64, n)
	frequencyRaw := make([]float64, n)

	for i, c := range candidates {
		streakRaw[i] = float64(c.IncorrectStreak) * incorrectStreakBoost
		conceptRaw[i] = c.ConceptMastery
		contentRaw[i] = c.ContentMastery
		if t.DesiredDifficulty != nil && c.Question.Difficulty == *t.DesiredDifficulty {
			difficultyRaw[i] = 1
		}
		frequencyRaw[i] = c.Category.GeneralWeight
	}

	streakNorm := normalizeByMax(streakRaw)
	conceptNorm := normalizeByMax(conceptRaw)
	contentNorm := normalizeByMax(contentRaw)
	frequencyNorm := normalizeByMax(frequencyRaw)

	// With no desired difficulty the component contributes nothing at all,
	// rather than the uniform fallback a zero vector would otherwise get.
	var difficultyNorm []float64
	if t.DesiredDifficulty != nil {
		difficultyNorm = normalizeByMax(difficultyRaw)
	} else {
		difficultyNorm = make([]float64, n)
	}

	halfMastery := t.ConceptContentMasteryProbWeight / 2

	weights := make([]float64, n)
	for i := range candidates {
		weights[i] = streakNorm[i]*t.IncorrectStreakProbWeight +
			conceptNorm[i]*halfMastery +
			contentNorm[i]*halfMastery +
			difficultyNorm[i]*t.DesiredDifficultyProbWeight +
			frequencyNorm[i]*t.TestFrequencyProbWeight
	}
	return weights
}

// normalizeByMax divides every element by the maximum of the vector.
// A zero maximum yields a uniform vector of 1s, which keeps the component
// from collapsing all weights to 0 and avoids the divide-by-zero.
func normalizeByMax(v []float64) []float64 {
	max := 0.0
	for _, x := range v {
		if x > max {
			max = x
		}
	}

	out := make([]float64, len(v))
	if max == 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, x := range v {
		out[i] = x / max
	}
	return out
}
