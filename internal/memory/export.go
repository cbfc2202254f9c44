package memory

import (
	"fmt"
	"sort"
	"time"
)

// Export format names.
const (
	FormatStructured = "structured"
	FormatSemantic   = "semantic"
	FormatMinimal    = "minimal"
)

// ExportEntry is one memory in a semantic export.
type ExportEntry struct {
	ID            int     `json:"id"`
	Content       string  `json:"content"`
	Importance    float64 `json:"importance"`
	Confidence    float64 `json:"confidence"`
	ExtractedInfo any     `json:"extracted_info,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
	AccessCount   int     `json:"access_count"`
}

// StructuredExport carries the full collection with metadata.
type StructuredExport struct {
	Memories         []Memory        `json:"memories"`
	AccessHistory    map[int][]int64 `json:"access_history"`
	ImportanceScores map[int]float64 `json:"importance_scores"`
	Statistics       Stats           `json:"statistics"`
	ExportedAt       int64           `json:"exported_at"`
}

// SemanticExport groups memories by type for human reading.
type SemanticExport struct {
	Episodic   []ExportEntry `json:"episodic_memories"`
	Semantic   []ExportEntry `json:"semantic_memories"`
	Procedural []ExportEntry `json:"procedural_memories"`
	ExportedAt int64         `json:"exported_at"`
}

// MinimalEntry is one memory in a minimal export.
type MinimalEntry struct {
	ID         int     `json:"id"`
	Type       Type    `json:"type"`
	Content    string  `json:"content"`
	Importance float64 `json:"importance"`
}

// MinimalExport carries only the core fields.
type MinimalExport struct {
	Memories   []MinimalEntry `json:"memories"`
	Statistics Stats          `json:"statistics"`
}

// Export renders the collection in one of the three formats.
func (s *System) Export(format string) (any, error) {
	switch format {
	case FormatStructured:
		return s.exportStructured(), nil
	case FormatSemantic:
		return s.exportSemantic(), nil
	case FormatMinimal:
		return s.exportMinimal(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

func (s *System) exportStructured() StructuredExport {
	stats := s.Statistics()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := StructuredExport{
		AccessHistory:    make(map[int][]int64, len(s.access)),
		ImportanceScores: make(map[int]float64, len(s.scores)),
		Statistics:       stats,
		ExportedAt:       time.Now().UnixMilli(),
	}
	for _, m := range s.memories {
		out.Memories = append(out.Memories, m.clone())
	}
	for id, ts := range s.access {
		out.AccessHistory[id] = append([]int64(nil), ts...)
	}
	for id, v := range s.scores {
		out.ImportanceScores[id] = v
	}
	return out
}

func (s *System) exportSemantic() SemanticExport {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := SemanticExport{ExportedAt: time.Now().UnixMilli()}
	for _, m := range s.memories {
		importance, ok := s.scores[m.ID]
		if !ok {
			importance = 0.5
		}
		entry := ExportEntry{
			ID:            m.ID,
			Content:       m.Content,
			Importance:    importance,
			Confidence:    m.Confidence,
			ExtractedInfo: m.ExtractedInfo,
			CreatedAt:     m.CreatedAt,
			UpdatedAt:     m.UpdatedAt,
			AccessCount:   m.AccessCount,
		}
		switch m.Type {
		case TypeEpisodic:
			out.Episodic = append(out.Episodic, entry)
		case TypeSemantic:
			out.Semantic = append(out.Semantic, entry)
		case TypeProcedural:
			out.Procedural = append(out.Procedural, entry)
		}
	}
	return out
}

func (s *System) exportMinimal() MinimalExport {
	stats := s.Statistics()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := MinimalExport{Statistics: stats}
	for _, m := range s.memories {
		importance, ok := s.scores[m.ID]
		if !ok {
			importance = 0.5
		}
		out.Memories = append(out.Memories, MinimalEntry{
			ID:         m.ID,
			Type:       m.Type,
			Content:    m.Content,
			Importance: importance,
		})
	}
	return out
}

// ImportanceDistribution summarizes the spread of importance scores.
type ImportanceDistribution struct {
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	HighCount int     `json:"high_importance_count"` // scores above 0.7
	LowCount  int     `json:"low_importance_count"`  // scores below 0.3
}

// AccessRank pairs a memory id with its access count.
type AccessRank struct {
	ID          int `json:"id"`
	AccessCount int `json:"access_count"`
}

// Patterns is a statistical profile of the collection.
type Patterns struct {
	TemporalBuckets        map[int]int            `json:"temporal_patterns"` // creation hour → count
	ImportanceDistribution ImportanceDistribution `json:"importance_distribution"`
	TotalAccess            int                    `json:"total_access"`
	AveragePerMemory       float64                `json:"average_access_per_memory"`
	MostAccessed           []AccessRank           `json:"most_accessed"`
}

// AnalyzePatterns computes temporal, importance, and access statistics over
// the collection.
func (s *System) AnalyzePatterns() Patterns {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Patterns{TemporalBuckets: make(map[int]int)}

	for _, m := range s.memories {
		hour := time.UnixMilli(m.CreatedAt).Hour()
		p.TemporalBuckets[hour]++
		p.TotalAccess += m.AccessCount
	}
	if len(s.memories) > 0 {
		p.AveragePerMemory = float64(p.TotalAccess) / float64(len(s.memories))
	}

	if len(s.scores) > 0 {
		first := true
		sum := 0.0
		for _, v := range s.scores {
			sum += v
			if first || v < p.ImportanceDistribution.Min {
				p.ImportanceDistribution.Min = v
			}
			if first || v > p.ImportanceDistribution.Max {
				p.ImportanceDistribution.Max = v
			}
			if v > 0.7 {
				p.ImportanceDistribution.HighCount++
			}
			if v < 0.3 {
				p.ImportanceDistribution.LowCount++
			}
			first = false
		}
		p.ImportanceDistribution.Mean = sum / float64(len(s.scores))
	}

	ranked := make([]AccessRank, 0, len(s.memories))
	for _, m := range s.memories {
		ranked = append(ranked, AccessRank{ID: m.ID, AccessCount: m.AccessCount})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AccessCount > ranked[j].AccessCount
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	p.MostAccessed = ranked

	return p
}
