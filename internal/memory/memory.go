// Package memory implements the dynamic memory lifecycle engine: store,
// retrieve, update, and forget over a bounded collection of memories derived
// from natural-language text. Classification, extraction, scoring, and merge
// synthesis are delegated to an LLM; every consumer of a model reply parses
// it defensively and falls back to a deterministic heuristic when the reply
// is not in the expected shape.
package memory

import (
	"encoding/json"
	"time"
)

// Type classifies a memory.
type Type string

const (
	TypeEpisodic   Type = "episodic"   // a personal event at a specific time or place
	TypeSemantic   Type = "semantic"   // a fact or concept
	TypeProcedural Type = "procedural" // a skill or procedure
	TypeUnknown    Type = "unknown"
)

// UpdateRecord is one entry in a memory's update history.
type UpdateRecord struct {
	Timestamp int64  `json:"timestamp"` // unix millis
	NewInfo   string `json:"new_info"`
	Mode      string `json:"mode"`
	Reasoning string `json:"reasoning"`
}

// Memory is the atomic stored unit.
type Memory struct {
	ID              int             `json:"id"`
	Type            Type            `json:"type"`
	Content         string          `json:"content"`
	ExtractedInfo   json.RawMessage `json:"extracted_info,omitempty"`
	Confidence      float64         `json:"confidence"`
	CreatedAt       int64           `json:"created_at"` // unix millis
	UpdatedAt       int64           `json:"updated_at"` // unix millis
	AccessCount     int             `json:"access_count"`
	ImportanceScore float64         `json:"importance_score"`
	UpdateHistory   []UpdateRecord  `json:"update_history,omitempty"`
	Context         map[string]any  `json:"context,omitempty"`
}

// clone returns a copy safe to hand to callers. The containers are copied;
// ExtractedInfo and Context values stay shared since both are treated as
// opaque and never mutated in place.
func (m *Memory) clone() Memory {
	c := *m
	if m.UpdateHistory != nil {
		c.UpdateHistory = make([]UpdateRecord, len(m.UpdateHistory))
		copy(c.UpdateHistory, m.UpdateHistory)
	}
	if m.Context != nil {
		c.Context = make(map[string]any, len(m.Context))
		for k, v := range m.Context {
			c.Context[k] = v
		}
	}
	if m.ExtractedInfo != nil {
		c.ExtractedInfo = append(json.RawMessage(nil), m.ExtractedInfo...)
	}
	return c
}

func (m *Memory) ageInDays(now time.Time) int {
	created := time.UnixMilli(m.CreatedAt)
	return int(now.Sub(created).Hours() / 24)
}

// State is the full snapshot exchanged with the persistence port.
type State struct {
	Memories         []Memory         `json:"memories"`
	AccessHistory    map[int][]int64  `json:"access_history"`
	ImportanceScores map[int]float64  `json:"importance_scores"`
	LastUpdated      int64            `json:"last_updated"`
}

// Persister is the persistence port: full-snapshot load and save. Load
// returns (nil, nil) when no snapshot exists yet.
type Persister interface {
	Load() (*State, error)
	Save(*State) error
}
