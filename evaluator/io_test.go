package evaluator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairsWithHeader(t *testing.T) {
	path := writeDataset(t, "pairs.csv",
		"id,candidate,original\n"+
			"7,A fox leaps.,The quick brown fox jumps.\n"+
			",,\n"+
			"8,Hi,Hello\n")

	pairs, err := ParsePairs(path)
	require.NoError(t, err)
	assert.Equal(t, []Pair{
		{Index: "7", Original: "The quick brown fox jumps.", Candidate: "A fox leaps."},
		{Index: "8", Original: "Hello", Candidate: "Hi"},
	}, pairs)
}

func TestParsePairsWithoutHeader(t *testing.T) {
	path := writeDataset(t, "pairs.tsv", "Hello\tHi\nGood morning\tMorning\n")

	pairs, err := ParsePairs(path)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{Original: "Good morning", Candidate: "Morning"}, pairs[1])
}

func TestParsePairsErrors(t *testing.T) {
	_, err := ParsePairs("pairs.xlsx")
	assert.ErrorContains(t, err, "unsupported pair file")

	_, err = ParsePairs(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = ParsePairs(writeDataset(t, "empty.csv", "original,candidate\n"))
	assert.ErrorContains(t, err, "no pairs found")
}

func TestSetColumnCandidates(t *testing.T) {
	t.Cleanup(func() { SetColumnCandidates(DefaultColumnCandidates()) })

	SetColumnCandidates(ColumnCandidates{
		Original:  []string{"quelle"},
		Candidate: []string{"ausgabe"},
	})
	path := writeDataset(t, "pairs.csv", "ausgabe,quelle\nHi,Hello\n")

	pairs, err := ParsePairs(path)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{Original: "Hello", Candidate: "Hi"}}, pairs)

	got := getColumnCandidates()
	assert.Equal(t, DefaultColumnCandidates().Transformed, got.Transformed)
	assert.Equal(t, []string{"quelle"}, got.Original)
}

func TestDefaultColumnCandidatesIsCopy(t *testing.T) {
	c := DefaultColumnCandidates()
	c.Original[0] = "mutated"
	assert.Equal(t, "original", DefaultColumnCandidates().Original[0])
}
