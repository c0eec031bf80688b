package normalize

import (
	"fmt"
	"strings"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/schema"
)

// Mode selects the row acceptance policy.
type Mode string

const (
	// ModeLenient accepts a row when at least one mapped field is populated.
	// Spreadsheet workbooks (xlsx, xls) are ingested this way.
	ModeLenient Mode = "lenient"
	// ModeStrict accepts a row only when learning_area, subject, level and
	// content_description are all populated. Delimited text (csv) uses it.
	ModeStrict Mode = "strict"
)

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLenient:
		return ModeLenient, nil
	case ModeStrict:
		return ModeStrict, nil
	default:
		return "", fmt.Errorf("unknown acceptance mode %q", raw)
	}
}

// TopicDelimiter separates entries in list-valued cells.
const TopicDelimiter = ";"

// IsAbsent reports whether a trimmed cell value counts as missing. The
// sentinels match exactly, so "NULL" is kept as a value.
func IsAbsent(v string) bool {
	switch v {
	case "", "undefined", "null":
		return true
	}
	return false
}

// SplitList splits a list-valued cell, trimming parts and dropping empties.
func SplitList(v string) []string {
	parts := strings.Split(v, TopicDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if IsAbsent(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Row turns one data row into an outcome. It returns false when the row does
// not pass the acceptance test for mode; rejection is never an error.
func Row(row []string, mapping schema.FieldMapping, mode Mode) (*curriculum.Outcome, bool) {
	o := &curriculum.Outcome{}
	populated := 0
	for idx, field := range mapping {
		if idx < 0 || idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if IsAbsent(v) {
			continue
		}
		if schema.IsListField(field) {
			items := SplitList(v)
			if len(items) == 0 {
				continue
			}
			o.Topics = append(o.Topics, items...)
			populated++
			continue
		}
		if Set(o, field, v) {
			populated++
		}
	}

	if o.Subject == "" && o.LearningArea != "" {
		o.Subject = o.LearningArea
	}

	switch mode {
	case ModeStrict:
		if !o.HasRequired() {
			return nil, false
		}
	default:
		if populated == 0 {
			return nil, false
		}
	}
	return o, true
}

// Set assigns v to the scalar outcome field f. It returns false for fields
// an outcome does not carry (description, topics).
func Set(o *curriculum.Outcome, f schema.Field, v string) bool {
	switch f {
	case schema.LearningArea:
		o.LearningArea = v
	case schema.Subject:
		o.Subject = v
	case schema.Level:
		o.Level = v
	case schema.Strand:
		o.Strand = v
	case schema.SubStrand:
		o.SubStrand = v
	case schema.ContentDescription:
		o.ContentDescription = v
	case schema.Elaboration:
		o.Elaboration = v
	case schema.AchievementStandard:
		o.AchievementStandard = v
	case schema.ContentDescriptorCode:
		o.ContentDescriptorCode = v
	case schema.CrossCurriculumPriority:
		o.CrossCurriculumPriority = v
	case schema.GeneralCapability:
		o.GeneralCapability = v
	default:
		return false
	}
	return true
}
