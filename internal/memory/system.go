package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kh1ye/memory/internal/llm"
	"github.com/kh1ye/memory/internal/prompt"
)

// ErrNotFound is returned for operations on a memory id that does not exist.
var ErrNotFound = errors.New("memory not found")

// minConfidence is the classification confidence below which no memory is
// created.
const minConfidence = 0.3

// System owns the memory collection and its two auxiliary indices, and
// implements the four lifecycle operations. All mutable state lives behind
// one mutex so the operations can be exposed to concurrent callers; every
// mutation ends with a full snapshot save through the persistence port.
type System struct {
	mu       sync.Mutex
	an       analyzer
	prompts  *prompt.Registry
	store    Persister
	memories []*Memory
	access   map[int][]int64
	scores   map[int]float64
	nextID   int
}

// New creates a System backed by the given LLM client and persistence port.
// A missing snapshot means an empty collection; any other load failure is
// logged and also treated as empty rather than failing construction.
func New(client llm.Client, store Persister) *System {
	prompts := prompt.NewRegistry()
	s := &System{
		an:      analyzer{llm: client, prompts: prompts},
		prompts: prompts,
		store:   store,
		access:  make(map[int][]int64),
		scores:  make(map[int]float64),
		nextID:  1,
	}

	st, err := store.Load()
	if err != nil {
		log.Printf("load memories: %v — starting empty", err)
		return s
	}
	if st == nil {
		return s
	}

	for i := range st.Memories {
		m := st.Memories[i]
		s.memories = append(s.memories, &m)
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
	if st.AccessHistory != nil {
		s.access = st.AccessHistory
	}
	if st.ImportanceScores != nil {
		s.scores = st.ImportanceScores
	}
	return s
}

// Store classifies and persists a new memory derived from text. A
// classification confidence below 0.3 rejects the text: the return is
// (nil, nil), a signal rather than an error. The optional context map is
// kept on the memory and reused whenever importance is recomputed.
func (s *System) Store(ctx context.Context, text string, contextInfo map[string]any) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ, confidence, _, err := s.an.classify(ctx, text)
	if err != nil {
		return nil, err
	}

	if confidence < minConfidence {
		return nil, nil
	}

	extracted, err := s.an.extract(ctx, text, typ)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	m := &Memory{
		ID:            s.nextID,
		Type:          typ,
		Content:       text,
		ExtractedInfo: extracted,
		Confidence:    confidence,
		CreatedAt:     now,
		UpdatedAt:     now,
		Context:       contextInfo,
	}

	score, err := s.an.importance(ctx, m, nil)
	if err != nil {
		return nil, err
	}
	m.ImportanceScore = score

	s.nextID++
	s.memories = append(s.memories, m)
	s.access[m.ID] = []int64{}
	s.scores[m.ID] = score

	if err := s.save(); err != nil {
		return nil, err
	}

	out := m.clone()
	return &out, nil
}

// Retrieve ranks every candidate memory against the query and returns the
// top k in ranked order. Exactly the returned memories get their access
// count incremented and an access timestamp appended; rejected candidates
// are untouched. Ties in final score resolve to the lower id.
func (s *System) Retrieve(ctx context.Context, query string, topK int, typeFilter Type) ([]Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type scored struct {
		m     *Memory
		score float64
	}

	var candidates []scored
	for _, m := range s.memories {
		if typeFilter != "" && m.Type != typeFilter {
			continue
		}

		relevance, err := s.an.relevance(ctx, query, m)
		if err != nil {
			return nil, err
		}

		importance, ok := s.scores[m.ID]
		if !ok {
			importance = 0.5
		}

		frequency := float64(m.AccessCount) / 10
		if frequency > 1 {
			frequency = 1
		}

		candidates = append(candidates, scored{
			m:     m,
			score: 0.5*relevance + 0.3*importance + 0.2*frequency,
		})
	}

	// Stable sort over insertion order: equal scores keep lower ids first.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	if topK < 0 {
		topK = 0
	}

	now := time.Now().UnixMilli()
	results := make([]Memory, 0, topK)
	for _, c := range candidates[:topK] {
		c.m.AccessCount++
		s.access[c.m.ID] = append(s.access[c.m.ID], now)
		results = append(results, c.m.clone())
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return results, nil
}

// Update reconciles an existing memory with new information under the given
// mode (merge, replace, or refine), appends the provenance record, and
// recomputes importance using the memory's stored context.
func (s *System) Update(ctx context.Context, id int, newInfo, mode string) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.find(id)
	if m == nil {
		return nil, fmt.Errorf("update memory %d: %w", id, ErrNotFound)
	}

	content, reasoning, err := s.an.mergeUpdate(ctx, m.Content, newInfo, mode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	m.Content = content
	m.UpdatedAt = now
	m.UpdateHistory = append(m.UpdateHistory, UpdateRecord{
		Timestamp: now,
		NewInfo:   newInfo,
		Mode:      mode,
		Reasoning: reasoning,
	})

	score, err := s.an.importance(ctx, m, s.access[id])
	if err != nil {
		return nil, err
	}
	m.ImportanceScore = score
	s.scores[id] = score

	if err := s.save(); err != nil {
		return nil, err
	}

	out := m.clone()
	return &out, nil
}

// ForgetID removes one memory unconditionally, together with its index
// entries. Unknown ids are an error.
func (s *System) ForgetID(id int) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.find(id)
	if m == nil {
		return nil, fmt.Errorf("forget memory %d: %w", id, ErrNotFound)
	}

	s.remove(id)
	if err := s.save(); err != nil {
		return nil, err
	}

	out := m.clone()
	return &out, nil
}

// Stats summarizes the collection.
type Stats struct {
	Total             int          `json:"total"`
	ByType            map[Type]int `json:"by_type"`
	AverageImportance float64      `json:"average_importance"`
	TotalAccessCount  int          `json:"total_access_count"`
}

// Statistics is a pure read over the collection.
func (s *System) Statistics() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{ByType: make(map[Type]int)}
	for _, m := range s.memories {
		stats.Total++
		stats.ByType[m.Type]++
		stats.TotalAccessCount += m.AccessCount
	}

	if len(s.scores) > 0 {
		sum := 0.0
		for _, v := range s.scores {
			sum += v
		}
		stats.AverageImportance = sum / float64(len(s.scores))
	}
	return stats
}

// Get returns a copy of one memory, or ErrNotFound.
func (s *System) Get(id int) (*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.find(id)
	if m == nil {
		return nil, fmt.Errorf("get memory %d: %w", id, ErrNotFound)
	}
	out := m.clone()
	return &out, nil
}

// List returns copies of all memories in insertion order.
func (s *System) List() []Memory {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Memory, 0, len(s.memories))
	for _, m := range s.memories {
		out = append(out, m.clone())
	}
	return out
}

// OptimizePrompt rewrites a named template via the model and records the
// revision. The next operation using that template picks up the new text.
func (s *System) OptimizePrompt(ctx context.Context, name string, examples []map[string]any, feedback map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts.Optimize(ctx, s.an.llm, name, examples, feedback)
}

// PromptHistory returns the prompt revision log.
func (s *System) PromptHistory() []prompt.Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts.History()
}

// find returns the live memory with the given id, or nil. Callers hold the
// lock.
func (s *System) find(id int) *Memory {
	for _, m := range s.memories {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// remove drops a memory and both of its index entries together. Callers
// hold the lock.
func (s *System) remove(id int) {
	for i, m := range s.memories {
		if m.ID == id {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			break
		}
	}
	delete(s.access, id)
	delete(s.scores, id)
}

// save writes the full snapshot through the persistence port. Callers hold
// the lock.
func (s *System) save() error {
	st := &State{
		Memories:         make([]Memory, 0, len(s.memories)),
		AccessHistory:    s.access,
		ImportanceScores: s.scores,
		LastUpdated:      time.Now().UnixMilli(),
	}
	for _, m := range s.memories {
		st.Memories = append(st.Memories, *m)
	}
	if err := s.store.Save(st); err != nil {
		return fmt.Errorf("save memories: %w", err)
	}
	return nil
}
