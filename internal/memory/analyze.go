package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kh1ye/memory/internal/llm"
	"github.com/kh1ye/memory/internal/prompt"
)

// analyzer is the engine's view of the text understanding service. Each
// operation renders the active prompt template, sends it through the LLM
// client, and parses the untrusted reply. Parse failures are always
// recovered locally via the documented fallback; only transport failures
// surface as errors.
type analyzer struct {
	llm     llm.Client
	prompts *prompt.Registry
}

// classification is the expected shape of a classify reply.
type classification struct {
	Type          string          `json:"type"`
	Confidence    *float64        `json:"confidence"`
	Reasoning     string          `json:"reasoning"`
	ExtractedInfo json.RawMessage `json:"extracted_info"`
}

// classify determines the memory type and confidence for a text. Replies
// that are not the expected JSON schema go through first-fragment recovery;
// if that also fails the result is {unknown, 0.5}.
func (a *analyzer) classify(ctx context.Context, text string) (Type, float64, json.RawMessage, error) {
	query := a.prompts.Render(prompt.Classification, map[string]string{"text": text})
	resp, err := a.llm.Complete(ctx, query)
	if err != nil {
		return "", 0, nil, fmt.Errorf("classify: %w", err)
	}

	var c classification
	if err := json.Unmarshal([]byte(resp.Content), &c); err != nil {
		c = classification{}
		if fragment, ok := firstJSONObject(resp.Content); ok {
			json.Unmarshal(fragment, &c)
		}
	}

	typ := Type(c.Type)
	switch typ {
	case TypeEpisodic, TypeSemantic, TypeProcedural:
	default:
		typ = TypeUnknown
	}

	confidence := 0.5
	if c.Confidence != nil {
		confidence = *c.Confidence
	}

	return typ, confidence, c.ExtractedInfo, nil
}

// extract asks for the type-specific structured document for a text. The
// document shape is model-defined and not validated; an unparseable reply
// degrades to {"raw_text": <text>}.
func (a *analyzer) extract(ctx context.Context, text string, typ Type) (json.RawMessage, error) {
	query := a.prompts.Render(prompt.Extraction, map[string]string{
		"text":        text,
		"memory_type": string(typ),
	})
	resp, err := a.llm.Complete(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	if json.Valid([]byte(resp.Content)) {
		return json.RawMessage(resp.Content), nil
	}
	if fragment, ok := firstJSONObject(resp.Content); ok {
		return fragment, nil
	}

	raw, _ := json.Marshal(map[string]string{"raw_text": text})
	return raw, nil
}

// relevance scores how well a memory answers a query. A reply that is not a
// bare float falls back to token overlap between query and content.
func (a *analyzer) relevance(ctx context.Context, query string, m *Memory) (float64, error) {
	q := fmt.Sprintf(`Assess the relevance between the query and the memory on a 0-1 scale.

Query: %s
Memory content: %s
Memory type: %s

Reply with a single float between 0 and 1 and nothing else.`, query, m.Content, m.Type)

	resp, err := a.llm.Complete(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("relevance: %w", err)
	}

	if score, ok := parseStrictFloat(resp.Content); ok {
		return score, nil
	}
	return overlapRelevance(query, m.Content), nil
}

// typeWeights are the heuristic importance weights per memory type.
// Episodic and procedural memories rank above plain facts, mirroring how
// personal experience and skills draw more attention than trivia.
var typeWeights = map[Type]float64{
	TypeEpisodic:   0.6,
	TypeSemantic:   0.5,
	TypeProcedural: 0.7,
}

// importance computes a [0,1] importance score for a memory. The model is
// consulted with the memory content, its access history, and the caller's
// context goal; if no fraction can be found in the reply, the deterministic
// heuristic 0.5 * confidence * typeWeight applies.
func (a *analyzer) importance(ctx context.Context, m *Memory, history []int64) (float64, error) {
	goal := "no specific goal"
	if len(m.Context) > 0 {
		if enc, err := json.Marshal(m.Context); err == nil {
			goal = string(enc)
		}
	}

	query := a.prompts.Render(prompt.Importance, map[string]string{
		"memory":         m.Content,
		"access_history": fmt.Sprint(history),
		"context_goal":   goal,
	})

	resp, err := a.llm.Complete(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("importance: %w", err)
	}

	if score, ok := parseEmbeddedFraction(resp.Content); ok {
		return clamp01(score), nil
	}

	weight, ok := typeWeights[m.Type]
	if !ok {
		weight = 0.5
	}
	return clamp01(0.5 * m.Confidence * weight), nil
}

// mergeProposal is the expected shape of an update reply.
type mergeProposal struct {
	UpdatedContent *string `json:"updated_content"`
	Reasoning      string  `json:"reasoning"`
}

// mergeUpdate reconciles old content with new information. The model's
// proposal wins when parseable; otherwise the mode decides: merge appends,
// replace and refine substitute.
func (a *analyzer) mergeUpdate(ctx context.Context, oldContent, newInfo, mode string) (string, string, error) {
	query := a.prompts.Render(prompt.Updating, map[string]string{
		"old_memory": oldContent,
		"new_info":   newInfo,
	})

	resp, err := a.llm.Complete(ctx, query)
	if err != nil {
		return "", "", fmt.Errorf("merge update: %w", err)
	}

	var p mergeProposal
	parsed := json.Unmarshal([]byte(resp.Content), &p) == nil
	if !parsed {
		if fragment, ok := firstJSONObject(resp.Content); ok {
			parsed = json.Unmarshal(fragment, &p) == nil
		}
	}
	if parsed {
		content := newInfo
		if p.UpdatedContent != nil {
			content = *p.UpdatedContent
		}
		return content, p.Reasoning, nil
	}

	reasoning := fmt.Sprintf("updated via %s mode", mode)
	if mode == "merge" {
		return oldContent + "\n" + newInfo, reasoning, nil
	}
	return newInfo, reasoning, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
