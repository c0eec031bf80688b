package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractBasic(t *testing.T) {
	got := Extract("Students investigate the properties of fractions, and compare fractions with decimals.")
	require.Equal(t, []string{"students", "investigate", "properties", "fractions", "compare", "decimals"}, got)
}

func TestExtractDropsShortTokensAndStopWords(t *testing.T) {
	got := Extract("The cat and dog ran with their owner through this park")
	require.Equal(t, []string{"owner", "park"}, got)
}

func TestExtractSplitsOnNonWordCharacters(t *testing.T) {
	got := Extract("cause-and-effect; problem/solution (sequencing)")
	require.Equal(t, []string{"cause", "effect", "problem", "solution", "sequencing"}, got)
}

func TestExtractCapsAtTen(t *testing.T) {
	text := "alpha bravo charlie delta echoes foxtrot golf1 hotel india juliet kilo1 lima1 mike1"
	got := Extract(text)
	require.Len(t, got, MaxKeywords)
	require.Equal(t, "alpha", got[0])
	require.Equal(t, "juliet", got[9])
}

func TestExtractDeterministicAndUnique(t *testing.T) {
	text := strings.Repeat("Measurement measurement geometry GEOMETRY shapes angles perimeter area volume capacity mass time ", 5)
	first := Extract(text)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Extract(text))
	}
	require.LessOrEqual(t, len(first), MaxKeywords)
	seen := map[string]bool{}
	for _, k := range first {
		require.False(t, seen[k], "duplicate keyword %q", k)
		seen[k] = true
	}
}

func TestExtractEmpty(t *testing.T) {
	require.Empty(t, Extract(""))
	require.Empty(t, Extract("  a an the  "))
}

func TestMergeTopicsExplicitFirst(t *testing.T) {
	got := MergeTopics([]string{"Fractions", " number "}, "fractions and decimals on number lines")
	require.Equal(t, []string{"Fractions", "number", "decimals", "lines"}, got)
}

func TestMergeTopicsCaps(t *testing.T) {
	explicit := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	got := MergeTopics(explicit, "geometry measurement statistics probability")
	require.Len(t, got, MaxKeywords)
	require.Equal(t, "geometry", got[8])
	require.Equal(t, "measurement", got[9])

	many := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		many = append(many, strings.Repeat("x", i+1))
	}
	require.Len(t, MergeTopics(many, "geometry"), MaxKeywords)
}
