package shards

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

func TestDisplayUsesDisplayCasedKeys(t *testing.T) {
	rec, ok := Normalize("general_capabilities", map[string]any{
		"id":           "gc-1",
		"subject":      "Literacy",
		"description":  "Comprehending texts",
		"topics":       []any{"reading"},
		"Organising X": "Element",
	})
	require.True(t, ok)

	got := Display(rec)
	require.Equal(t, "gc-1", got["id"])
	require.Equal(t, "Literacy", got["Subject"])
	require.Equal(t, "Comprehending texts", got["Description"])
	require.Equal(t, []string{"reading"}, got["Topics"])
	require.Equal(t, "Element", got["Organising X"])
	require.NotContains(t, got, "subject")
	require.NotContains(t, got, "Level")
}

func TestDisplayShardsKeepsEmptyShards(t *testing.T) {
	out := DisplayShards(map[string][]curriculum.ShardRecord{
		curriculum.ShardLearningAreas:       {{ID: "a", Level: "Year 3"}},
		curriculum.ShardGeneralCapabilities: {},
	})
	require.Len(t, out[curriculum.ShardLearningAreas], 1)
	require.Equal(t, "Year 3", out[curriculum.ShardLearningAreas][0]["Level"])
	require.NotNil(t, out[curriculum.ShardGeneralCapabilities])
	require.Empty(t, out[curriculum.ShardGeneralCapabilities])
}
