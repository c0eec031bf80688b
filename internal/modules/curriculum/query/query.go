package query

import (
	"strings"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/schema"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/shards"
)

// Filter holds optional case-insensitive substring criteria. Empty criteria
// match everything. Limit > 0 truncates each shard's result.
type Filter struct {
	Subject string
	Level   string
	Keyword string
	Limit   int
}

var (
	subjectFields = []schema.Field{schema.Subject, schema.LearningArea}
	levelFields   = []schema.Field{schema.Level}
	keywordFields = []schema.Field{
		schema.ContentDescription,
		schema.Elaboration,
		schema.AchievementStandard,
		schema.Description,
		schema.Strand,
		schema.SubStrand,
	}
)

func (f Filter) normalized() Filter {
	return Filter{
		Subject: strings.ToLower(strings.TrimSpace(f.Subject)),
		Level:   strings.ToLower(strings.TrimSpace(f.Level)),
		Keyword: strings.ToLower(strings.TrimSpace(f.Keyword)),
		Limit:   f.Limit,
	}
}

func (f Filter) IsEmpty() bool {
	n := f.normalized()
	return n.Subject == "" && n.Level == "" && n.Keyword == "" && n.Limit <= 0
}

// Run filters every shard of ds. The result always has one entry per shard
// in ds, possibly empty; ds itself is left untouched.
func Run(ds *curriculum.Dataset, f Filter) map[string][]curriculum.ShardRecord {
	out := map[string][]curriculum.ShardRecord{}
	if ds == nil {
		return out
	}
	f = f.normalized()

	for name, records := range ds.Shards {
		kept := []curriculum.ShardRecord{}
		for i := range records {
			if f.Limit > 0 && len(kept) >= f.Limit {
				break
			}
			if Matches(&records[i], f) {
				kept = append(kept, records[i])
			}
		}
		out[name] = kept
	}
	return out
}

// Matches reports whether rec satisfies every non-empty criterion of f. Both
// the primary value and any alternates of a field are checked.
func Matches(rec *curriculum.ShardRecord, f Filter) bool {
	f = f.normalized()
	if f.Subject != "" && !anyContains(rec, subjectFields, f.Subject) {
		return false
	}
	if f.Level != "" && !anyContains(rec, levelFields, f.Level) {
		return false
	}
	if f.Keyword != "" && !anyContains(rec, keywordFields, f.Keyword) && !topicsContain(rec.Topics, f.Keyword) {
		return false
	}
	return true
}

func anyContains(rec *curriculum.ShardRecord, fields []schema.Field, needle string) bool {
	for _, field := range fields {
		for _, v := range shards.Values(rec, field) {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
	}
	return false
}

func topicsContain(topics []string, needle string) bool {
	for _, t := range topics {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
