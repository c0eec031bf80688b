package shards

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/normalize"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/schema"
)

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:curriculum:shard-record"))

// contentFields are the fields an item needs at least one of to be kept.
// Items without any are header rows or blank placeholders.
var contentFields = []schema.Field{
	schema.ContentDescription,
	schema.AchievementStandard,
	schema.Description,
	schema.Subject,
	schema.LearningArea,
}

// decodeItems parses a shard document and returns its items. Without a
// JSONPath the root must be an array.
func decodeItems(r io.Reader, itemsPath string) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode shard: %w", err)
	}

	if strings.TrimSpace(itemsPath) == "" {
		items, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("shard root is %T, expected an array", doc)
		}
		return items, nil
	}

	x, err := jp.ParseString(itemsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid items path %q: %w", itemsPath, err)
	}
	results := x.Get(doc)
	if len(results) == 1 {
		if arr, ok := results[0].([]any); ok {
			return arr, nil
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("items path %q matched nothing", itemsPath)
	}
	return results, nil
}

// Normalize folds one loosely typed shard item into a ShardRecord. Keys are
// visited in sorted order so the primary value of a field is stable when the
// item carries it under more than one naming convention.
func Normalize(shard string, item any) (curriculum.ShardRecord, bool) {
	obj, ok := item.(map[string]any)
	if !ok {
		return curriculum.ShardRecord{}, false
	}
	rec := curriculum.ShardRecord{Shard: shard}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := obj[k]
		if schema.IsIdentifierKey(k) {
			if rec.ID == "" {
				if s := scalar(v); !normalize.IsAbsent(s) {
					rec.ID = s
				}
			}
			continue
		}

		f, ok := schema.Resolve(k)
		if !ok {
			if rec.Attributes == nil {
				rec.Attributes = map[string]any{}
			}
			rec.Attributes[k] = v
			continue
		}

		if schema.IsListField(f) {
			rec.Topics = appendUnique(rec.Topics, listValue(v)...)
			continue
		}

		s := scalar(v)
		if normalize.IsAbsent(s) {
			continue
		}
		dst := recordField(&rec, f)
		if dst == nil {
			continue
		}
		switch {
		case *dst == "":
			*dst = s
		case !strings.EqualFold(*dst, s):
			addAlternate(&rec, f, s)
		}
	}

	if len(rec.Topics) > curriculum.MaxTopics {
		rec.Topics = rec.Topics[:curriculum.MaxTopics]
	}
	if !hasContent(&rec) {
		return curriculum.ShardRecord{}, false
	}
	if rec.ID == "" {
		rec.ID = deriveID(&rec)
	}
	return rec, true
}

// Values returns the primary value of f followed by any alternates.
func Values(rec *curriculum.ShardRecord, f schema.Field) []string {
	var out []string
	if dst := recordField(rec, f); dst != nil && *dst != "" {
		out = append(out, *dst)
	}
	return append(out, rec.Alternates[string(f)]...)
}

func recordField(rec *curriculum.ShardRecord, f schema.Field) *string {
	switch f {
	case schema.LearningArea:
		return &rec.LearningArea
	case schema.Subject:
		return &rec.Subject
	case schema.Level:
		return &rec.Level
	case schema.Strand:
		return &rec.Strand
	case schema.SubStrand:
		return &rec.SubStrand
	case schema.ContentDescription:
		return &rec.ContentDescription
	case schema.Elaboration:
		return &rec.Elaboration
	case schema.AchievementStandard:
		return &rec.AchievementStandard
	case schema.ContentDescriptorCode:
		return &rec.ContentDescriptorCode
	case schema.CrossCurriculumPriority:
		return &rec.CrossCurriculumPriority
	case schema.GeneralCapability:
		return &rec.GeneralCapability
	case schema.Description:
		return &rec.Description
	}
	return nil
}

func addAlternate(rec *curriculum.ShardRecord, f schema.Field, v string) {
	key := string(f)
	for _, existing := range rec.Alternates[key] {
		if strings.EqualFold(existing, v) {
			return
		}
	}
	if rec.Alternates == nil {
		rec.Alternates = map[string][]string{}
	}
	rec.Alternates[key] = append(rec.Alternates[key], v)
}

func hasContent(rec *curriculum.ShardRecord) bool {
	for _, f := range contentFields {
		if len(Values(rec, f)) > 0 {
			return true
		}
	}
	return false
}

func deriveID(rec *curriculum.ShardRecord) string {
	var b strings.Builder
	b.WriteString(rec.Shard)
	for _, f := range schema.OutcomeFields() {
		b.WriteByte(0x1f)
		if dst := recordField(rec, f); dst != nil {
			b.WriteString(*dst)
		}
	}
	b.WriteByte(0x1f)
	b.WriteString(rec.Description)
	return uuid.NewSHA1(idNamespace, []byte(b.String())).String()
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := scalar(e); !normalize.IsAbsent(s) {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, normalize.TopicDelimiter+" ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func listValue(v any) []string {
	switch t := v.(type) {
	case string:
		return normalize.SplitList(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := scalar(e); !normalize.IsAbsent(s) {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalar(v); !normalize.IsAbsent(s) {
			return []string{s}
		}
		return nil
	}
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		dup := false
		for _, d := range dst {
			if strings.EqualFold(d, v) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
