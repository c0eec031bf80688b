package shards

import (
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/schema"
)

var displayFields = append(schema.OutcomeFields(), schema.Description)

// Display renders rec with the display-cased keys the remote shards use.
// Unmapped attributes keep their original keys; canonical fields win on a
// key collision.
func Display(rec curriculum.ShardRecord) map[string]any {
	out := make(map[string]any, len(rec.Attributes)+len(displayFields)+1)
	for k, v := range rec.Attributes {
		out[k] = v
	}
	out["id"] = rec.ID
	for _, f := range displayFields {
		if schema.IsListField(f) {
			if len(rec.Topics) > 0 {
				out[schema.DisplayName(f)] = rec.Topics
			}
			continue
		}
		if dst := recordField(&rec, f); dst != nil && *dst != "" {
			out[schema.DisplayName(f)] = *dst
		}
	}
	return out
}

// DisplayShards applies Display to every record of every shard.
func DisplayShards(in map[string][]curriculum.ShardRecord) map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(in))
	for name, recs := range in {
		rows := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			rows = append(rows, Display(rec))
		}
		out[name] = rows
	}
	return out
}
