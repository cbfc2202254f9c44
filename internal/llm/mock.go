package llm

import (
	"context"
	"strings"
)

// MockClient is a test double for the Client interface. Responses are
// consumed in order; once exhausted, Response is returned for every call.
type MockClient struct {
	Response  *Response
	Responses []*Response
	Err       error
	Calls     []string // records prompts sent
}

// Complete records the call and returns the next scripted response.
func (m *MockClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) > 0 {
		r := m.Responses[0]
		m.Responses = m.Responses[1:]
		return r, nil
	}
	if m.Response != nil {
		return m.Response, nil
	}
	return &Response{Content: "", Provider: "mock"}, nil
}

// CannedClient is a keyword-driven local stand-in for a real provider.
// It inspects the prompt and returns a plausible reply for each operation
// kind, so the full pipeline can run offline.
type CannedClient struct{}

// NewCannedClient returns a CannedClient.
func NewCannedClient() *CannedClient {
	return &CannedClient{}
}

// Complete returns a canned reply based on keywords in the prompt.
func (c *CannedClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	lower := strings.ToLower(prompt)
	reply := ""

	switch {
	case strings.Contains(lower, "memory system analyst"):
		reply = classifyCanned(lower)
	case strings.Contains(lower, "importance"):
		reply = "0.75"
	case strings.Contains(lower, "relevance"):
		reply = "0.5"
	case strings.Contains(lower, "extract the key information"):
		reply = `{"summary": "extracted by canned provider"}`
	case strings.Contains(lower, "needs to be revised"):
		// No structured reply: exercises the deterministic merge fallback
		reply = "merged as requested"
	default:
		reply = `{"type": "unknown", "confidence": 0.5, "reasoning": "no clear classification"}`
	}

	return &Response{Content: reply, Provider: "mock"}, nil
}

func classifyCanned(lower string) string {
	switch {
	case strings.Contains(lower, " met ") || strings.Contains(lower, "yesterday") ||
		strings.Contains(lower, "this morning") || strings.Contains(lower, " i "):
		return `{"type": "episodic", "confidence": 0.9, "reasoning": "personal event with time and place", "extracted_info": {"kind": "event"}}`
	case strings.Contains(lower, "how to") || strings.Contains(lower, "steps") ||
		strings.Contains(lower, "first,"):
		return `{"type": "procedural", "confidence": 0.88, "reasoning": "describes a procedure", "extracted_info": {"kind": "procedure"}}`
	case strings.Contains(lower, " is a ") || strings.Contains(lower, " is the "):
		return `{"type": "semantic", "confidence": 0.85, "reasoning": "factual statement", "extracted_info": {"kind": "fact"}}`
	default:
		return `{"type": "unknown", "confidence": 0.5, "reasoning": "no clear classification"}`
	}
}
