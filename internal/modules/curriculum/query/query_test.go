package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/shards"
)

func mustNormalize(t *testing.T, shard string, item map[string]any) curriculum.ShardRecord {
	t.Helper()
	rec, ok := shards.Normalize(shard, item)
	require.True(t, ok, "%v", item)
	return rec
}

func dataset(t *testing.T) *curriculum.Dataset {
	return &curriculum.Dataset{Shards: map[string][]curriculum.ShardRecord{
		curriculum.ShardLearningAreas: {
			// display-cased keys only
			mustNormalize(t, curriculum.ShardLearningAreas, map[string]any{
				"Subject": "Mathematics", "Level": "Year 5", "Content Description": "Multiply large numbers",
			}),
			// legacy keys only
			mustNormalize(t, curriculum.ShardLearningAreas, map[string]any{
				"subject": "Maths Extension", "level": "Level 5b", "content_description": "Fractions",
			}),
			mustNormalize(t, curriculum.ShardLearningAreas, map[string]any{
				"Subject": "English", "Level": "Year 5", "Content Description": "Narrative texts",
			}),
			mustNormalize(t, curriculum.ShardLearningAreas, map[string]any{
				"Subject": "Mathematics", "Level": "Year 6", "Content Description": "Ratios",
			}),
		},
		curriculum.ShardAchievementStandards: {
			// learning area only, no subject
			mustNormalize(t, curriculum.ShardAchievementStandards, map[string]any{
				"learning_area": "MATHEMATICS", "Level": "Foundation to Year 5", "Achievement Standard": "Students count",
			}),
			// conflicting subjects; only the legacy value matches
			mustNormalize(t, curriculum.ShardAchievementStandards, map[string]any{
				"Subject": "Numeracy", "subject": "Mathematics", "Level": "Year 5", "Achievement Standard": "Estimate",
			}),
		},
		curriculum.ShardGeneralCapabilities: {
			mustNormalize(t, curriculum.ShardGeneralCapabilities, map[string]any{
				"General Capability": "Literacy", "Description": "Reading and viewing",
			}),
		},
	}}
}

func TestRunMatchesEitherKeyConvention(t *testing.T) {
	res := Run(dataset(t), Filter{Subject: "math", Level: "5"})

	var subjects []string
	for _, r := range res[curriculum.ShardLearningAreas] {
		subjects = append(subjects, r.Subject)
	}
	require.Equal(t, []string{"Mathematics", "Maths Extension"}, subjects)

	standards := res[curriculum.ShardAchievementStandards]
	require.Len(t, standards, 2)
	require.Equal(t, "MATHEMATICS", standards[0].LearningArea)
	require.Equal(t, "Numeracy", standards[1].Subject)
	require.Equal(t, []string{"Mathematics"}, standards[1].Alternates["subject"])

	require.Contains(t, res, curriculum.ShardGeneralCapabilities)
	require.Empty(t, res[curriculum.ShardGeneralCapabilities])
}

func TestRunEmptyFilterReturnsEverything(t *testing.T) {
	ds := dataset(t)
	res := Run(ds, Filter{})
	for name, rows := range ds.Shards {
		require.Len(t, res[name], len(rows), name)
	}
}

func TestRunKeywordSearchesDescriptiveFieldsAndTopics(t *testing.T) {
	ds := dataset(t)
	res := Run(ds, Filter{Keyword: "  VIEWING "})
	require.Len(t, res[curriculum.ShardGeneralCapabilities], 1)
	require.Empty(t, res[curriculum.ShardLearningAreas])

	ds.Shards[curriculum.ShardLearningAreas][2].Topics = []string{"storytelling"}
	res = Run(ds, Filter{Keyword: "story"})
	require.Len(t, res[curriculum.ShardLearningAreas], 1)
}

func TestRunLimitTruncatesPerShard(t *testing.T) {
	res := Run(dataset(t), Filter{Limit: 1})
	for name, rows := range res {
		require.LessOrEqual(t, len(rows), 1, name)
	}
	require.Len(t, res[curriculum.ShardAchievementStandards], 1)
}

func TestRunDoesNotMutateDataset(t *testing.T) {
	ds := dataset(t)
	before := len(ds.Shards[curriculum.ShardLearningAreas])
	_ = Run(ds, Filter{Subject: "english"})
	require.Len(t, ds.Shards[curriculum.ShardLearningAreas], before)
}

func TestRunNilDataset(t *testing.T) {
	require.Empty(t, Run(nil, Filter{Subject: "x"}))
}

func TestFilterIsEmpty(t *testing.T) {
	require.True(t, Filter{Subject: "  "}.IsEmpty())
	require.False(t, Filter{Level: "5"}.IsEmpty())
	require.False(t, Filter{Limit: 3}.IsEmpty())
}
