// Package prompt holds the learned prompt templates used to consult the
// language model. Templates are configuration, not control logic: each
// operation renders the current template, and Optimize lets the model
// rewrite a template from examples and feedback, keeping an append-only
// history of every revision.
package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kh1ye/memory/internal/llm"
)

// Template names.
const (
	Classification = "memory_classification"
	Extraction     = "memory_extraction"
	Importance     = "memory_importance"
	Updating       = "memory_updating"
)

// Revision records one optimization step.
type Revision struct {
	Name        string    `json:"name"`
	Timestamp   time.Time `json:"timestamp"`
	OldTemplate string    `json:"old_template"`
	NewTemplate string    `json:"new_template"`
}

// Registry holds the active template per name plus the revision history.
type Registry struct {
	templates map[string]string
	history   []Revision
}

// NewRegistry returns a Registry seeded with the initial templates.
func NewRegistry() *Registry {
	return &Registry{
		templates: map[string]string{
			Classification: initialClassification,
			Extraction:     initialExtraction,
			Importance:     initialImportance,
			Updating:       initialUpdating,
		},
	}
}

// Get returns the active template for a name, or "" if unknown.
func (r *Registry) Get(name string) string {
	return r.templates[name]
}

// Render substitutes {placeholder} variables into the active template.
func (r *Registry) Render(name string, vars map[string]string) string {
	out := r.templates[name]
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

// History returns a copy of the revision log.
func (r *Registry) History() []Revision {
	out := make([]Revision, len(r.history))
	copy(out, r.history)
	return out
}

// Optimize asks the model to rewrite a template given examples and optional
// feedback, installs the replacement, and records the before/after pair.
// The examples and feedback are arbitrary JSON-encodable documents.
func (r *Registry) Optimize(ctx context.Context, client llm.Client, name string, examples []map[string]any, feedback map[string]any) (string, error) {
	current, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}

	exampleJSON, err := json.MarshalIndent(examples, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal examples: %w", err)
	}

	feedbackLine := ""
	if feedback != nil {
		fb, err := json.Marshal(feedback)
		if err != nil {
			return "", fmt.Errorf("marshal feedback: %w", err)
		}
		feedbackLine = "Feedback: " + string(fb)
	}

	query := fmt.Sprintf(`You are a prompt optimization expert. The current prompt is not performing well. Improve it based on the examples and feedback below.

Current prompt:
%s

Examples:
%s

%s

Return only the improved prompt text, with no other commentary.`, current, exampleJSON, feedbackLine)

	resp, err := client.Complete(ctx, query)
	if err != nil {
		return "", fmt.Errorf("optimize prompt %s: %w", name, err)
	}

	optimized := strings.TrimSpace(resp.Content)
	if optimized == "" {
		return "", fmt.Errorf("optimize prompt %s: empty reply", name)
	}

	r.history = append(r.history, Revision{
		Name:        name,
		Timestamp:   time.Now(),
		OldTemplate: current,
		NewTemplate: optimized,
	})
	r.templates[name] = optimized
	return optimized, nil
}

const initialClassification = `You are a memory system analyst. Read the text below and decide which kind of memory it is:
1. Episodic: a concrete event at a specific time or place, a personal experience
2. Semantic: an objective fact, concept, or piece of knowledge
3. Procedural: a skill, a method, steps for how to do something

Text: {text}

Reply in JSON with:
- type: the memory type (episodic/semantic/procedural)
- confidence: a value between 0 and 1
- reasoning: why you chose that type
- extracted_info: the key information you noticed`

const initialExtraction = `Extract the key information from the text below. Do not force the output into a fixed template — organize it according to what the text naturally contains.

Text: {text}
Memory type: {memory_type}

Reply in JSON, shaped by the content itself.`

const initialImportance = `Mimic human attention bias and rate how important this memory is. People naturally attend to:
- emotionally intense experiences
- information relevant to their current goal
- content that recurs or is accessed often
- novel or surprising knowledge

Memory content: {memory}
Access history: {access_history}
Current goal: {context_goal}

Rate the importance between 0 and 1 and explain briefly.`

const initialUpdating = `A memory needs to be revised. New information conflicts with or extends the old memory. Decide how to combine them.

Old memory: {old_memory}
New information: {new_info}

Reply in JSON with:
- updated_content: the revised memory text
- reasoning: how and why you updated it`
