package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldMapping maps a column index to its canonical field. Columns whose
// header did not resolve are absent.
type FieldMapping map[int]Field

// synonyms is keyed by NormalizeHeader output. Snake_case, kebab-case and
// camelCase spellings collapse to the spaced form, so only that form is listed.
var synonyms = map[string]Field{
	"learning area":      LearningArea,
	"learning areas":     LearningArea,
	"learning area name": LearningArea,
	"key learning area":  LearningArea,
	"learningarea":       LearningArea,
	"area":               LearningArea,

	"subject":      Subject,
	"subjects":     Subject,
	"subject name": Subject,
	"course":       Subject,

	"level":       Level,
	"levels":      Level,
	"year level":  Level,
	"year levels": Level,
	"yearlevel":   Level,
	"year":        Level,
	"year band":   Level,
	"band":        Level,
	"stage":       Level,
	"grade":       Level,

	"strand":  Strand,
	"strands": Strand,

	"sub strand":  SubStrand,
	"sub strands": SubStrand,
	"substrand":   SubStrand,
	"substrands":  SubStrand,

	"content description":  ContentDescription,
	"content descriptions": ContentDescription,
	"contentdescription":   ContentDescription,
	"content":              ContentDescription,
	"outcome":              ContentDescription,
	"outcome description":  ContentDescription,

	"elaboration":          Elaboration,
	"elaborations":         Elaboration,
	"content elaboration":  Elaboration,
	"content elaborations": Elaboration,

	"achievement standard":  AchievementStandard,
	"achievement standards": AchievementStandard,
	"achievementstandard":   AchievementStandard,

	"content descriptor code":  ContentDescriptorCode,
	"content description code": ContentDescriptorCode,
	"content code":             ContentDescriptorCode,
	"descriptor code":          ContentDescriptorCode,
	"outcome code":             ContentDescriptorCode,
	"code":                     ContentDescriptorCode,

	"cross curriculum priority":   CrossCurriculumPriority,
	"cross curriculum priorities": CrossCurriculumPriority,
	"crosscurriculum priority":    CrossCurriculumPriority,
	"crosscurriculum priorities":  CrossCurriculumPriority,
	"ccp":                         CrossCurriculumPriority,

	"general capability":   GeneralCapability,
	"general capabilities": GeneralCapability,
	"gc":                   GeneralCapability,

	"topics":   Topics,
	"topic":    Topics,
	"tags":     Topics,
	"keywords": Topics,

	"description":  Description,
	"descriptions": Description,
	"summary":      Description,
}

var foldAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader folds header text to the lookup form: accents stripped,
// camelCase split, lowercased, separators collapsed to single spaces.
func NormalizeHeader(raw string) string {
	s, _, err := transform.String(foldAccents, raw)
	if err != nil {
		s = raw
	}

	var b strings.Builder
	b.Grow(len(s))
	space := true
	var prev rune
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '_' || r == '-' || r == '/' || r == '.':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		case r == '*' || r == ':' || r == '(' || r == ')':
			// required-column markers and unit hints are not part of the name
		default:
			if unicode.IsUpper(r) && unicode.IsLower(prev) && !space {
				b.WriteByte(' ')
			}
			b.WriteRune(unicode.ToLower(r))
			space = false
		}
		prev = r
	}
	return strings.TrimSpace(b.String())
}

// Resolve maps one header (or shard key) to its canonical field.
func Resolve(header string) (Field, bool) {
	key := NormalizeHeader(header)
	if key == "" {
		return "", false
	}
	f, ok := synonyms[key]
	return f, ok
}

// MapHeader builds the FieldMapping for a sheet header row. When two columns
// resolve to the same field the leftmost wins.
func MapHeader(header []string) FieldMapping {
	m := make(FieldMapping, len(header))
	seen := make(map[Field]bool, len(header))
	for idx, h := range header {
		f, ok := Resolve(h)
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		m[idx] = f
	}
	return m
}

// IsIdentifierKey reports whether a shard key carries an item identifier.
func IsIdentifierKey(key string) bool {
	switch NormalizeHeader(key) {
	case "id", "uuid", "identifier":
		return true
	}
	return false
}
