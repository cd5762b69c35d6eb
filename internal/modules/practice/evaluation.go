package practice

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Delimiter separates feedback from the score block. Four hashes are also
// accepted since they begin with three.
const Delimiter = "###"

var scorePairRe = regexp.MustCompile(`([A-Za-z][A-Za-z_ ]*?)[ \t]*:[ \t]*([^\s,;:]*)`)

type Evaluation struct {
	Feedback string             `json:"feedback"`
	Scores   map[string]float64 `json:"scores"`
	// Unknown lists labels found in the score block that the flow does not
	// recognize.
	Unknown  []string `json:"unknown,omitempty"`
	Raw      string   `json:"-"`
	Degraded bool     `json:"degraded"`
}

// ZeroEvaluation is the result recorded when no evaluator output exists.
func ZeroEvaluation(labels []string, raw string) Evaluation {
	scores := make(map[string]float64, len(labels))
	for _, l := range labels {
		scores[l] = 0
	}
	return Evaluation{Scores: scores, Raw: raw, Degraded: true}
}

// ParseEvaluation splits raw evaluator output into feedback and scores for
// the expected labels. It never fails: a missing delimiter, missing label or
// unparseable value yields zero for the affected scores and sets Degraded.
func ParseEvaluation(raw string, labels []string) Evaluation {
	out := ZeroEvaluation(labels, raw)
	out.Degraded = false

	idx := strings.Index(raw, Delimiter)
	if idx < 0 {
		out.Degraded = true
		return out
	}
	out.Feedback = strings.TrimSpace(raw[:idx])
	block := strings.TrimLeft(raw[idx:], "#")
	block = strings.ReplaceAll(block, "*", "")

	expected := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		expected[l] = struct{}{}
	}
	found := make(map[string]bool, len(labels))

	for _, m := range scorePairRe.FindAllStringSubmatch(block, -1) {
		label, ok := matchLabel(m[1], expected)
		if !ok {
			out.Unknown = append(out.Unknown, normalizeLabel(m[1]))
			continue
		}
		if found[label] {
			continue
		}
		found[label] = true
		v, ok := parseScore(m[2])
		if !ok {
			out.Degraded = true
			continue
		}
		out.Scores[label] = v
	}
	for _, l := range labels {
		if !found[l] {
			out.Degraded = true
		}
	}
	return out
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

// matchLabel accepts the label as written or by its first word, so
// "Content relevance" counts as content.
func matchLabel(s string, expected map[string]struct{}) (string, bool) {
	n := normalizeLabel(s)
	if _, ok := expected[n]; ok {
		return n, true
	}
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) > 1 {
		if _, ok := expected[fields[0]]; ok {
			return fields[0], true
		}
		last := fields[len(fields)-1]
		if _, ok := expected[last]; ok {
			return last, true
		}
	}
	return "", false
}

// parseScore reads "7", "7.5" or "7/10" and clamps to 0..10.
func parseScore(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	switch {
	case v < 0:
		v = 0
	case v > 10:
		v = 10
	}
	return v, true
}
