package assoc

// LookaheadConfig bounds the window of observations considered jointly with the current one.
// Zero in either field disables lookahead, a negative value removes the corresponding cap.
type LookaheadConfig struct {
	// Maximum number of neighboring observations
	MaxNeighbors int `yaml:"max_neighbors"`
	// Maximum distance of neighboring observations
	MaxDistance float64 `yaml:"max_distance"`
}

// Enabled reports whether any observation may have a non-empty window
func (cfg LookaheadConfig) Enabled() bool {
	return cfg.MaxNeighbors != 0 && cfg.MaxDistance != 0
}

// lookaheadWindows returns for every observation m the observations with larger index ordered by
// distance to m and capped by cfg. Windows are nil when empty.
func lookaheadWindows(set ObservationSet, cfg LookaheadConfig) [][]int {
	numObs := set.Len()
	windows := make([][]int, numObs)
	if !cfg.Enabled() {
		return windows
	}
	candidates := make(neighborHeap, 0, numObs)
	for m := 0; m < numObs-1; m++ {
		candidates = candidates[:0]
		for other := m + 1; other < numObs; other++ {
			candidates.Push(neighborCandidate{
				observation: other,
				distance:    set.Distance(m, other),
			})
		}

		limit := candidates.Len()
		if cfg.MaxNeighbors > 0 {
			limit = minInt(limit, cfg.MaxNeighbors)
		}
		var window []int
		for len(window) < limit {
			nearest := candidates.Pop()
			if cfg.MaxDistance > 0 && nearest.distance > cfg.MaxDistance {
				break
			}
			window = append(window, nearest.observation)
		}
		windows[m] = window
	}
	return windows
}
