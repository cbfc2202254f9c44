// Package ingest turns free-running text into memories, one sentence at a
// time.
package ingest

import (
	"context"
	"strings"

	"github.com/kh1ye/memory/internal/memory"
)

// minSentenceLen filters out fragments too short to carry a memory.
const minSentenceLen = 5

// sentence terminators, both CJK and Latin.
var terminators = map[rune]bool{
	'。': true, '！': true, '？': true,
	'.': true, '!': true, '?': true,
}

// Sentences splits text on sentence terminators, keeping the terminator
// attached. Fragments of minSentenceLen runes or fewer are dropped.
func Sentences(text string) []string {
	var out []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if terminators[r] {
			s := strings.TrimSpace(current.String())
			if len([]rune(s)) > minSentenceLen {
				out = append(out, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); len([]rune(s)) > minSentenceLen {
		out = append(out, s)
	}
	return out
}

// Result summarizes one ingestion run.
type Result struct {
	Sentences int                 `json:"sentences"`
	Stored    int                 `json:"stored"`
	Rejected  int                 `json:"rejected"` // below the confidence threshold
	ByType    map[memory.Type]int `json:"by_type"`
}

// Process stores every sentence of the text as its own memory. Sentences
// the classifier rejects are counted, not errors; a transport failure stops
// the run.
func Process(ctx context.Context, sys *memory.System, text string) (*Result, error) {
	res := &Result{ByType: make(map[memory.Type]int)}

	for _, sentence := range Sentences(text) {
		res.Sentences++
		m, err := sys.Store(ctx, sentence, nil)
		if err != nil {
			return nil, err
		}
		if m == nil {
			res.Rejected++
			continue
		}
		res.Stored++
		res.ByType[m.Type]++
	}
	return res, nil
}
