package evaluator

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFindMatchesTrimmedCaseSensitive(t *testing.T) {
	path := writeDataset(t, "summary.csv",
		"original,summary\n"+
			"Hello world,Hi world\n"+
			"\"The cat sat on the mat.\",\"A cat sat.\"\n")

	e, ok := Find(" Hello world ", path)
	require.True(t, ok)
	assert.Equal(t, ReferenceEntry{Original: "Hello world", Transformed: "Hi world"}, e)

	e, ok = Find("\u201cThe cat sat on the mat.\u201d", path)
	require.True(t, ok)
	assert.Equal(t, "A cat sat.", e.Transformed)

	_, ok = Find("Hello World", path)
	assert.False(t, ok)
	_, ok = Find("   ", path)
	assert.False(t, ok)
}

func TestFindWithoutHeader(t *testing.T) {
	path := writeDataset(t, "gold.csv", "Hello world,Hi world\nGood morning,Morning\n")

	e, ok := Find("Hello world", path)
	require.True(t, ok)
	assert.Equal(t, "Hi world", e.Transformed)

	e, ok = Find("Good morning", path)
	require.True(t, ok)
	assert.Equal(t, "Morning", e.Transformed)
}

func TestFindHeaderColumnOrder(t *testing.T) {
	path := writeDataset(t, "gold.csv",
		"\ufeffid,highlights,article\n"+
			"1,Short,Long article text\n")

	e, ok := Find("Long article text", path)
	require.True(t, ok)
	assert.Equal(t, "Short", e.Transformed)

	_, ok = Find("Short", path)
	assert.False(t, ok)
}

func TestFindFirstMatchWins(t *testing.T) {
	path := writeDataset(t, "gold.csv", "text,summary\nHello,first\nHello,second\n")

	e, ok := Find("Hello", path)
	require.True(t, ok)
	assert.Equal(t, "first", e.Transformed)
}

func TestFindSkipsShortRows(t *testing.T) {
	path := writeDataset(t, "gold.csv", "original,summary\nlonely\n,orphan\nHello,Hi\n")

	e, ok := Find("Hello", path)
	require.True(t, ok)
	assert.Equal(t, "Hi", e.Transformed)

	_, ok = Find("lonely", path)
	assert.False(t, ok)
}

func TestFindTSV(t *testing.T) {
	path := writeDataset(t, "gold.tsv", "source\ttarget\nHello, world\tHi, world\n")

	e, ok := Find("Hello, world", path)
	require.True(t, ok)
	assert.Equal(t, "Hi, world", e.Transformed)
}

func TestFindMissingFile(t *testing.T) {
	_, ok := Find("Hello", filepath.Join(t.TempDir(), "nope.csv"))
	assert.False(t, ok)

	_, ok = FileFinder(filepath.Join(t.TempDir(), "nope.csv")).Find("Hello")
	assert.False(t, ok)
}

func TestLoadReferenceIndex(t *testing.T) {
	path := writeDataset(t, "gold.csv",
		"original,summary\n"+
			"Hello,first\n"+
			"\" Bye \",Later\n"+
			"Hello,second\n")

	idx, err := LoadReferenceIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Size())
	assert.Equal(t, path, idx.Source())

	e, ok := idx.Find("Hello")
	require.True(t, ok)
	assert.Equal(t, "first", e.Transformed)

	e, ok = idx.Find("Bye")
	require.True(t, ok)
	assert.Equal(t, "Later", e.Transformed)

	_, ok = idx.Find("hello")
	assert.False(t, ok)

	fromFile, ok := Find("Hello", path)
	require.True(t, ok)
	assert.Equal(t, fromFile, ReferenceEntry{Original: "Hello", Transformed: "first"})
}

func TestFindIsOrderIndependent(t *testing.T) {
	entries := []ReferenceEntry{
		{Original: "Hello world", Transformed: "Hi world"},
		{Original: "Good morning", Transformed: "Morning"},
		{Original: foxOriginal, Transformed: "A fox jumps over a dog."},
	}
	reversed := slices.Clone(entries)
	slices.Reverse(reversed)

	for _, tt := range []struct {
		name   string
		header string
		rows   []ReferenceEntry
	}{
		{"header forward", "original,summary\n", entries},
		{"header reversed", "original,summary\n", reversed},
		{"no header forward", "", entries},
		{"no header reversed", "", reversed},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			b.WriteString(tt.header)
			for _, e := range tt.rows {
				b.WriteString(e.Original + "," + e.Transformed + "\n")
			}
			path := writeDataset(t, "gold.csv", b.String())

			idx, err := LoadReferenceIndex(path)
			require.NoError(t, err)
			assert.Equal(t, len(entries), idx.Size())

			for _, want := range entries {
				got, ok := Find(want.Original, path)
				require.True(t, ok, want.Original)
				assert.Equal(t, want, got)

				indexed, ok := idx.Find(want.Original)
				require.True(t, ok, want.Original)
				assert.Equal(t, want, indexed)
			}
		})
	}
}

func TestLoadReferenceIndexMissingFile(t *testing.T) {
	_, err := LoadReferenceIndex(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReferenceIndexReplace(t *testing.T) {
	idx := NewReferenceIndex()
	assert.Zero(t, idx.Size())

	idx.Replace([]ReferenceEntry{
		{Original: "a", Transformed: "1"},
		{Original: "", Transformed: "ignored"},
		{Original: "'b'", Transformed: "2"},
	})
	assert.Equal(t, 2, idx.Size())
	e, ok := idx.Find("b")
	require.True(t, ok)
	assert.Equal(t, ReferenceEntry{Original: "b", Transformed: "2"}, e)

	idx.Replace(nil)
	assert.Zero(t, idx.Size())
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "ABC 1", NormalizeText("  ＡＢＣ ①\x07 "))
	assert.Equal(t, "a\tb\nc", NormalizeText("a\tb\nc"))
}
