package memory

import (
	"sort"
	"time"
)

// Forgetting strategies.
const (
	StrategyLowImportance = "low_importance"
	StrategyOldUnused     = "old_unused"
)

// retentionFloor is the fraction of the pre-forget population that
// strategy-based eviction must preserve. Explicit single-id forgetting is
// exempt.
const retentionFloor = 0.8

// Forget evicts memories selected by the named strategy and returns the
// evicted set. low_importance targets scores below 0.3, weighted by
// importance ascending; old_unused targets memories older than 30 days with
// fewer than 2 accesses, weighted by 1/(ageInDays+1) ascending. An
// unrecognized strategy selects nothing. Eviction never reduces the
// population below 80% of its pre-forget size.
func (s *System) Forget(strategy string) ([]Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type candidate struct {
		m      *Memory
		weight float64
	}

	now := time.Now()
	var candidates []candidate

	for _, m := range s.memories {
		switch strategy {
		case StrategyLowImportance:
			importance, ok := s.scores[m.ID]
			if !ok {
				importance = 0.5
			}
			if importance < 0.3 {
				candidates = append(candidates, candidate{m: m, weight: importance})
			}
		case StrategyOldUnused:
			age := m.ageInDays(now)
			if m.AccessCount < 2 && age > 30 {
				candidates = append(candidates, candidate{m: m, weight: 1.0 / float64(age+1)})
			}
		}
	}

	// Ascending by weight; ties keep the lower id first.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight < candidates[j].weight
	})

	evictCount := len(candidates) - int(float64(len(s.memories))*retentionFloor)
	if evictCount < 0 {
		evictCount = 0
	}

	forgotten := make([]Memory, 0, evictCount)
	for _, c := range candidates[:evictCount] {
		forgotten = append(forgotten, c.m.clone())
		s.remove(c.m.ID)
	}

	if len(forgotten) > 0 {
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return forgotten, nil
}
