package selection

import "math/rand"

// sampleWithoutReplacement draws up to count distinct indices from the
// candidate pool via weighted random selection: each draw picks a uniform
// value in [0, totalRemainingWeight) and walks the cumulative weights of
// the not-yet-selected candidates. A zero total weight degenerates to a
// uniform draw. Returns fewer than count when the pool is exhausted.
func sampleWithoutReplacement(weights []float64, count int, rng *rand.Rand) []int {
	remaining := make([]int, len(weights))
	for i := range remaining {
		remaining[i] = i
	}

	if count > len(remaining) {
		count = len(remaining)
	}

	selected := make([]int, 0, count)
	for len(selected) < count {
		total := 0.0
		for _, idx := range remaining {
			total += weights[idx]
		}

		if total == 0 {
			pick := rng.Intn(len(remaining))
			selected = append(selected, remaining[pick])
			remaining = append(remaining[:pick], remaining[pick+1:]...)
			continue
		}

		r := rng.Float64() * total
		cumulative := 0.0
		pick := len(remaining) - 1 // rounding in the cumulative sum must not drop the draw
		for pos, idx := range remaining {
			cumulative += weights[idx]
			if r <= cumulative {
				pick = pos
				break
			}
		}
		selected = append(selected, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return selected
}
