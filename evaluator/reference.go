package evaluator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"yashubustudio/texteval/internal/logger"
)

// ReferenceFinder resolves an input text to its gold pair.
type ReferenceFinder interface {
	Find(input string) (ReferenceEntry, bool)
}

// Find scans the dataset at path for a row whose original text equals input
// after trimming whitespace and surrounding quotes. Matching is case-sensitive
// and the first match wins. A missing or unreadable dataset is not found.
func Find(input, path string) (ReferenceEntry, bool) {
	return find(input, path, logger.Log)
}

func find(input, path string, log *logger.Logger) (ReferenceEntry, bool) {
	key := referenceKey(input)
	if key == "" {
		return ReferenceEntry{}, false
	}
	var (
		found ReferenceEntry
		ok    bool
	)
	err := scanReferences(path, func(e ReferenceEntry) bool {
		if e.Original == key {
			found, ok = e, true
			return false
		}
		return true
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("reference dataset unreadable", "path", path, "error", err)
	}
	return found, ok
}

// FileFinder is a ReferenceFinder that rescans a dataset file on every lookup.
type FileFinder string

func (f FileFinder) Find(input string) (ReferenceEntry, bool) {
	return Find(input, string(f))
}

// datasetFinder is a FileFinder that reports read failures to its own logger.
type datasetFinder struct {
	path string
	log  *logger.Logger
}

func (f datasetFinder) Find(input string) (ReferenceEntry, bool) {
	return find(input, f.path, f.log)
}

// scanReferences streams dataset rows to fn until fn returns false. Rows with
// fewer than two columns or that fail to parse are skipped.
func scanReferences(path string, fn func(ReferenceEntry) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	reader := newDelimitedReader(f, path)
	first := true
	origCol, transCol := 0, 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if first {
			first = false
			if o, t, isHeader := resolveReferenceColumns(row); isHeader {
				origCol, transCol = o, t
				continue
			}
		}
		if len(row) < 2 || origCol >= len(row) || transCol >= len(row) {
			continue
		}
		entry := ReferenceEntry{
			Original:    referenceKey(row[origCol]),
			Transformed: referenceKey(row[transCol]),
		}
		if entry.Original == "" {
			continue
		}
		if !fn(entry) {
			return nil
		}
	}
}

func newDelimitedReader(r io.Reader, path string) *csv.Reader {
	reader := csv.NewReader(r)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// resolveReferenceColumns reports whether row is a header and, if so, which
// columns hold the original and transformed texts.
func resolveReferenceColumns(row []string) (int, int, bool) {
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = cleanCell(cell)
	}
	candidates := getColumnCandidates()
	orig := findColumn(header, candidates.Original)
	trans := findColumn(header, candidates.Transformed)
	if orig < 0 && trans < 0 {
		return 0, 1, false
	}
	if orig < 0 {
		orig = firstFreeColumn(len(header), trans)
	}
	if trans < 0 {
		trans = firstFreeColumn(len(header), orig)
	}
	return orig, trans, true
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		for _, cand := range candidates {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}
