package keywords

import (
	"regexp"
	"strings"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

// MaxKeywords caps both Extract output and merged topic lists.
const MaxKeywords = curriculum.MaxTopics

// minTokenLen: tokens of this length or shorter are discarded.
const minTokenLen = 3

var nonWord = regexp.MustCompile(`\W+`)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all also am an and any are as at
		be because been before being below between both but by
		can could did do does doing down during each few for from further
		had has have having he her here hers herself him himself his how
		i if in into is it its itself just me more most my myself
		no nor not now of off on once only or other our ours ourselves out over own
		same she should so some such than that the their theirs them themselves then
		there these they this those through to too under until up upon very
		was we were what when where which while who whom why will with within would
		you your yours yourself yourselves
		including include includes using use used across along among etc
		such whether without towards toward onto
	`) {
		stopWords[w] = struct{}{}
	}
}

// Extract returns up to MaxKeywords unique keywords from text, in first-seen
// order. Deterministic and side-effect free.
func Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	out := make([]string, 0, MaxKeywords)
	seen := make(map[string]struct{}, MaxKeywords)
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= minTokenLen {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// MergeTopics keeps explicit topics first, appends keywords extracted from
// text, drops case-insensitive duplicates and caps the result at MaxKeywords.
func MergeTopics(explicit []string, text string) []string {
	out := make([]string, 0, MaxKeywords)
	seen := make(map[string]struct{}, MaxKeywords)
	add := func(t string) bool {
		t = strings.TrimSpace(t)
		if t == "" {
			return len(out) < MaxKeywords
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			return len(out) < MaxKeywords
		}
		seen[key] = struct{}{}
		out = append(out, t)
		return len(out) < MaxKeywords
	}
	for _, t := range explicit {
		if !add(t) {
			return out
		}
	}
	if len(out) >= MaxKeywords {
		return out
	}
	for _, k := range Extract(text) {
		if !add(k) {
			break
		}
	}
	return out
}
