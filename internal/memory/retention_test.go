package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/kh1ye/memory/internal/llm"
)

func daysAgo(n int) int64 {
	return time.Now().AddDate(0, 0, -n).UnixMilli()
}

func TestForgetLowImportanceRespectsFloor(t *testing.T) {
	// 10 memories, 9 below the importance cutoff. The floor keeps 80% of
	// the population, so only one candidate may go: the least important.
	var memories []Memory
	scores := make(map[int]float64)
	for i := 1; i <= 10; i++ {
		memories = append(memories, Memory{ID: i, Type: TypeSemantic, Content: "m"})
		if i == 10 {
			scores[i] = 0.9
		} else {
			scores[i] = 0.05 + float64(i)*0.01
		}
	}
	sys, store := seedSystem(t, memories, scores, &llm.MockClient{})

	forgotten, err := sys.Forget(StrategyLowImportance)
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if len(forgotten) != 1 {
		t.Fatalf("forgotten = %d, want 1", len(forgotten))
	}
	if forgotten[0].ID != 1 {
		t.Errorf("evicted id = %d, want 1 (lowest importance)", forgotten[0].ID)
	}
	if len(sys.memories) != 9 {
		t.Errorf("remaining = %d, want 9", len(sys.memories))
	}
	if _, ok := sys.scores[1]; ok {
		t.Error("importance index still holds evicted id")
	}
	if _, ok := sys.access[1]; ok {
		t.Error("access history still holds evicted id")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestForgetLowImportanceFewCandidates(t *testing.T) {
	// 10 memories, only 3 candidates: 3 - floor(0.8*10) is negative, so
	// nothing is evicted and nothing is persisted.
	var memories []Memory
	scores := make(map[int]float64)
	for i := 1; i <= 10; i++ {
		memories = append(memories, Memory{ID: i, Type: TypeSemantic, Content: "m"})
		if i <= 3 {
			scores[i] = 0.1
		} else {
			scores[i] = 0.9
		}
	}
	sys, store := seedSystem(t, memories, scores, &llm.MockClient{})

	forgotten, err := sys.Forget(StrategyLowImportance)
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if len(forgotten) != 0 {
		t.Errorf("forgotten = %d, want 0", len(forgotten))
	}
	if len(sys.memories) != 10 {
		t.Errorf("remaining = %d, want 10", len(sys.memories))
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 (no-op forget must not persist)", store.saves)
	}
}

func TestForgetOldUnusedEvictsOldestFirst(t *testing.T) {
	// All five qualify (unused and older than 30 days). Weight 1/(age+1)
	// sorted ascending puts the oldest first, and the floor allows one
	// eviction: 5 - floor(0.8*5) = 1.
	memories := []Memory{
		{ID: 1, Type: TypeEpisodic, Content: "a", CreatedAt: daysAgo(40)},
		{ID: 2, Type: TypeEpisodic, Content: "b", CreatedAt: daysAgo(365)},
		{ID: 3, Type: TypeEpisodic, Content: "c", CreatedAt: daysAgo(50)},
		{ID: 4, Type: TypeEpisodic, Content: "d", CreatedAt: daysAgo(90)},
		{ID: 5, Type: TypeEpisodic, Content: "e", CreatedAt: daysAgo(31)},
	}
	sys, _ := seedSystem(t, memories, nil, &llm.MockClient{})

	forgotten, err := sys.Forget(StrategyOldUnused)
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if len(forgotten) != 1 {
		t.Fatalf("forgotten = %d, want 1", len(forgotten))
	}
	if forgotten[0].ID != 2 {
		t.Errorf("evicted id = %d, want 2 (oldest)", forgotten[0].ID)
	}
}

func TestForgetOldUnusedSkipsRecentAndAccessed(t *testing.T) {
	memories := []Memory{
		{ID: 1, Type: TypeEpisodic, Content: "fresh", CreatedAt: daysAgo(5)},
		{ID: 2, Type: TypeEpisodic, Content: "popular", CreatedAt: daysAgo(100), AccessCount: 7},
	}
	sys, _ := seedSystem(t, memories, nil, &llm.MockClient{})

	forgotten, err := sys.Forget(StrategyOldUnused)
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if len(forgotten) != 0 {
		t.Errorf("forgotten = %d, want 0", len(forgotten))
	}
}

func TestForgetUnknownStrategyIsNoOp(t *testing.T) {
	sys, store := seedSystem(t, []Memory{
		{ID: 1, Type: TypeSemantic, Content: "m"},
	}, map[int]float64{1: 0.01}, &llm.MockClient{})

	forgotten, err := sys.Forget("by_vibes")
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if len(forgotten) != 0 {
		t.Errorf("forgotten = %d, want 0", len(forgotten))
	}
	if store.saves != 0 {
		t.Errorf("saves = %d, want 0", store.saves)
	}
}

func TestForgetIDBypassesFloor(t *testing.T) {
	// Explicit removal ignores the retention floor entirely.
	sys, store := seedSystem(t, []Memory{
		{ID: 1, Type: TypeSemantic, Content: "only"},
	}, map[int]float64{1: 0.95}, &llm.MockClient{})

	removed, err := sys.ForgetID(1)
	if err != nil {
		t.Fatalf("ForgetID: %v", err)
	}
	if removed.ID != 1 {
		t.Errorf("removed id = %d, want 1", removed.ID)
	}
	if len(sys.memories) != 0 {
		t.Errorf("remaining = %d, want 0", len(sys.memories))
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestForgetIDNotFound(t *testing.T) {
	sys, _ := seedSystem(t, nil, nil, &llm.MockClient{})

	if _, err := sys.ForgetID(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
