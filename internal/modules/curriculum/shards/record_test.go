package shards

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/schema"
)

func TestNormalizeFoldsBothKeyConventions(t *testing.T) {
	display, ok := Normalize("learning_areas", map[string]any{
		"Learning Area":       "Mathematics",
		"Level":               "Year 5",
		"Content Description": "Multiply large numbers",
	})
	require.True(t, ok)
	legacy, ok := Normalize("learning_areas", map[string]any{
		"learning_area":       "Mathematics",
		"level":               "Year 5",
		"content_description": "Multiply large numbers",
	})
	require.True(t, ok)

	require.Equal(t, display.LearningArea, legacy.LearningArea)
	require.Equal(t, display.Level, legacy.Level)
	require.Equal(t, display.ContentDescription, legacy.ContentDescription)
	require.Equal(t, display.ID, legacy.ID, "derived ids depend on content, not key spelling")
}

func TestNormalizeKeepsConflictingValueAsAlternate(t *testing.T) {
	rec, ok := Normalize("achievement_standards", map[string]any{
		"Subject": "Mathematics",
		"subject": "Maths",
		"Level":   "Year 5",
		"level":   "year 5",
	})
	require.True(t, ok)
	require.Equal(t, "Mathematics", rec.Subject)
	require.Equal(t, []string{"Maths"}, rec.Alternates["subject"])
	require.Empty(t, rec.Alternates["level"], "case-only differences are not alternates")
	require.Equal(t, []string{"Mathematics", "Maths"}, Values(&rec, schema.Subject))
}

func TestNormalizePreservesUnmappedKeysAndExplicitID(t *testing.T) {
	var item any
	dec := json.NewDecoder(strings.NewReader(`{"ID": 42, "Description": "Numeracy", "colour": "blue", "weight": 1.5}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&item))

	rec, ok := Normalize("general_capabilities", item)
	require.True(t, ok)
	require.Equal(t, "42", rec.ID)
	require.Equal(t, "Numeracy", rec.Description)
	require.Equal(t, "blue", rec.Attributes["colour"])
	require.Equal(t, json.Number("1.5"), rec.Attributes["weight"])
}

func TestNormalizeTopicsFromArrayOrDelimitedString(t *testing.T) {
	rec, ok := Normalize("learning_areas", map[string]any{
		"Subject": "Science",
		"Topics":  []any{"forces", "Motion"},
		"tags":    "motion; energy",
	})
	require.True(t, ok)
	require.ElementsMatch(t, []string{"forces", "Motion", "energy"}, rec.Topics)
}

func TestNormalizeCapsTopics(t *testing.T) {
	tags := make([]any, 0, 15)
	for i := 0; i < 15; i++ {
		tags = append(tags, fmt.Sprintf("tag-%02d", i))
	}
	rec, ok := Normalize("learning_areas", map[string]any{"Subject": "Maths", "Topics": tags})
	require.True(t, ok)
	require.Len(t, rec.Topics, curriculum.MaxTopics)
	require.Equal(t, "tag-00", rec.Topics[0])
	require.Equal(t, "tag-09", rec.Topics[curriculum.MaxTopics-1])
}

func TestNormalizeDropsPlaceholders(t *testing.T) {
	for _, item := range []any{
		map[string]any{},
		map[string]any{"Level": "Year 3", "Strand": "Number"},
		map[string]any{"subject": "undefined", "content_description": "null"},
		"not an object",
	} {
		_, ok := Normalize("learning_areas", item)
		require.False(t, ok, "%v", item)
	}
}

func TestNormalizeDerivedIDIsStable(t *testing.T) {
	item := map[string]any{"Subject": "History", "Level": "Year 8", "Content Description": "Medieval Europe"}
	a, _ := Normalize("learning_areas", item)
	b, _ := Normalize("learning_areas", item)
	c, _ := Normalize("achievement_standards", item)
	require.NotEmpty(t, a.ID)
	require.Equal(t, a.ID, b.ID)
	require.NotEqual(t, a.ID, c.ID)
}

func TestDecodeItems(t *testing.T) {
	items, err := decodeItems(strings.NewReader(`[{"a":1},{"b":2}]`), "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = decodeItems(strings.NewReader(`{"meta":{"v":3},"data":{"items":[{"a":1},{"a":2},{"a":3}]}}`), "$.data.items")
	require.NoError(t, err)
	require.Len(t, items, 3)

	items, err = decodeItems(strings.NewReader(`{"data":[{"kind":"x"},{"kind":"y"}]}`), "$.data[*]")
	require.NoError(t, err)
	require.Len(t, items, 2)

	_, err = decodeItems(strings.NewReader(`{"data":[]}`), "")
	require.Error(t, err)

	_, err = decodeItems(strings.NewReader(`{"data":[]}`), "$.missing")
	require.Error(t, err)

	_, err = decodeItems(strings.NewReader(`[{"a":`), "")
	require.Error(t, err)
}
