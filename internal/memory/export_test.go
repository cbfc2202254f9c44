package memory

import (
	"encoding/json"
	"testing"

	"github.com/kh1ye/memory/internal/llm"
)

func exportFixture(t *testing.T) *System {
	t.Helper()
	sys, _ := seedSystem(t, []Memory{
		{ID: 1, Type: TypeEpisodic, Content: "went hiking", Confidence: 0.9, AccessCount: 3},
		{ID: 2, Type: TypeSemantic, Content: "the sky is blue", Confidence: 0.8},
		{ID: 3, Type: TypeProcedural, Content: "how to tie a bowline", Confidence: 0.7, AccessCount: 1},
	}, map[int]float64{1: 0.27, 2: 0.8, 3: 0.35}, &llm.MockClient{})
	return sys
}

func TestExportStructured(t *testing.T) {
	sys := exportFixture(t)

	out, err := sys.Export(FormatStructured)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	st, ok := out.(StructuredExport)
	if !ok {
		t.Fatalf("export type = %T", out)
	}
	if len(st.Memories) != 3 {
		t.Errorf("memories = %d, want 3", len(st.Memories))
	}
	if st.Statistics.Total != 3 {
		t.Errorf("statistics total = %d, want 3", st.Statistics.Total)
	}
	if st.ImportanceScores[2] != 0.8 {
		t.Errorf("importance[2] = %v, want 0.8", st.ImportanceScores[2])
	}
	if st.ExportedAt == 0 {
		t.Error("exported_at not set")
	}

	// Mutating the export must not touch the live collection
	st.Memories[0].Content = "tampered"
	if sys.find(1).Content != "went hiking" {
		t.Error("export aliases live memory data")
	}
}

func TestExportSemanticGroupsByType(t *testing.T) {
	sys := exportFixture(t)

	out, err := sys.Export(FormatSemantic)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	sem := out.(SemanticExport)
	if len(sem.Episodic) != 1 || len(sem.Semantic) != 1 || len(sem.Procedural) != 1 {
		t.Fatalf("groups = %d/%d/%d, want 1/1/1", len(sem.Episodic), len(sem.Semantic), len(sem.Procedural))
	}
	if sem.Episodic[0].Importance != 0.27 {
		t.Errorf("episodic importance = %v, want 0.27", sem.Episodic[0].Importance)
	}
	if sem.Procedural[0].Content != "how to tie a bowline" {
		t.Errorf("procedural content = %q", sem.Procedural[0].Content)
	}
}

func TestExportMinimal(t *testing.T) {
	sys := exportFixture(t)

	out, err := sys.Export(FormatMinimal)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	exp := out.(MinimalExport)
	if len(exp.Memories) != 3 {
		t.Fatalf("memories = %d, want 3", len(exp.Memories))
	}
	if exp.Memories[0].Type != TypeEpisodic || exp.Memories[0].Importance != 0.27 {
		t.Errorf("first entry = %+v", exp.Memories[0])
	}

	// Minimal entries must serialize without the heavyweight fields
	raw, err := json.Marshal(exp.Memories[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["update_history"]; ok {
		t.Error("minimal export leaks update history")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	sys := exportFixture(t)
	if _, err := sys.Export("yaml"); err == nil {
		t.Error("want error for unsupported format")
	}
}

func TestAnalyzePatterns(t *testing.T) {
	sys := exportFixture(t)

	p := sys.AnalyzePatterns()
	if p.TotalAccess != 4 {
		t.Errorf("total access = %d, want 4", p.TotalAccess)
	}
	if !almostEqual(p.AveragePerMemory, 4.0/3.0) {
		t.Errorf("average per memory = %v", p.AveragePerMemory)
	}
	if p.ImportanceDistribution.Min != 0.27 || p.ImportanceDistribution.Max != 0.8 {
		t.Errorf("importance min/max = %v/%v", p.ImportanceDistribution.Min, p.ImportanceDistribution.Max)
	}
	if p.ImportanceDistribution.HighCount != 1 || p.ImportanceDistribution.LowCount != 1 {
		t.Errorf("high/low counts = %d/%d, want 1/1", p.ImportanceDistribution.HighCount, p.ImportanceDistribution.LowCount)
	}
	if len(p.MostAccessed) != 3 || p.MostAccessed[0].ID != 1 {
		t.Errorf("most accessed = %+v", p.MostAccessed)
	}
}

func TestAnalyzePatternsEmpty(t *testing.T) {
	sys, _ := seedSystem(t, nil, nil, &llm.MockClient{})

	p := sys.AnalyzePatterns()
	if p.TotalAccess != 0 || p.AveragePerMemory != 0 {
		t.Errorf("empty patterns = %+v", p)
	}
	if len(p.MostAccessed) != 0 {
		t.Errorf("most accessed = %+v, want empty", p.MostAccessed)
	}
}
