package memory

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// firstJSONObject extracts the first embedded JSON object from free text:
// the span from the first '{' to the last '}'. Model replies often wrap the
// JSON in commentary or markdown fences, so a direct unmarshal of the whole
// reply is tried first by callers and this is the recovery path.
func firstJSONObject(content string) (json.RawMessage, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	fragment := content[start : end+1]
	if !json.Valid([]byte(fragment)) {
		return nil, false
	}
	return json.RawMessage(fragment), true
}

// parseStrictFloat parses a reply that should be nothing but a float,
// e.g. a relevance score. Whitespace is tolerated, commentary is not.
func parseStrictFloat(content string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// fractionPattern matches the first 0–1 fraction in free text: ".75",
// "0.75", "1.0", or a bare "0".
var fractionPattern = regexp.MustCompile(`0?\.\d+|1\.0|0`)

// parseEmbeddedFraction finds the first decimal fraction in a free-text
// reply, e.g. an importance assessment with reasoning around the number.
func parseEmbeddedFraction(content string) (float64, bool) {
	match := fractionPattern.FindString(content)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// tokenSet lowercases and splits text into a set of whitespace-separated
// tokens.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

// overlapRelevance is the heuristic relevance fallback: the fraction of
// query tokens that appear in the content, scaled by 0.5 so a pure keyword
// match never outranks a confident model score.
func overlapRelevance(query, content string) float64 {
	queryTokens := tokenSet(query)
	contentTokens := tokenSet(content)

	shared := 0
	for w := range queryTokens {
		if contentTokens[w] {
			shared++
		}
	}

	denom := len(queryTokens)
	if denom < 1 {
		denom = 1
	}
	return float64(shared) / float64(denom) * 0.5
}
