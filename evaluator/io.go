package evaluator

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ParsePairs reads a CSV/TSV of (original, candidate) rows for batch
// evaluation. A header row is detected by column name; without one the first
// two columns are used.
func ParsePairs(path string) ([]Pair, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".tsv" {
		return nil, fmt.Errorf("unsupported pair file %s: want .csv or .tsv", filepath.Base(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return readPairs(newDelimitedReader(f, path))
}

func readPairs(reader *csv.Reader) ([]Pair, error) {
	var (
		pairs          []Pair
		first          = true
		idxCol         = -1
		origCol, cands = 0, 1
	)
	for line := 1; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if first {
			first = false
			if i, o, c, isHeader := resolvePairColumns(row); isHeader {
				idxCol, origCol, cands = i, o, c
				continue
			}
		}
		if origCol >= len(row) || cands >= len(row) {
			continue
		}
		p := Pair{
			Original:  cleanCell(row[origCol]),
			Candidate: cleanCell(row[cands]),
		}
		if idxCol >= 0 && idxCol < len(row) {
			p.Index = cleanCell(row[idxCol])
		}
		if p.Original == "" && p.Candidate == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil, errors.New("no pairs found")
	}
	return pairs, nil
}

func resolvePairColumns(row []string) (idx, orig, cand int, isHeader bool) {
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = cleanCell(cell)
	}
	candidates := getColumnCandidates()
	idx = findColumn(header, candidates.Index)
	orig = findColumn(header, candidates.Original)
	cand = findColumn(header, candidates.Candidate)
	if orig < 0 && cand < 0 {
		return -1, 0, 1, false
	}
	if orig < 0 {
		orig = firstFreeColumn(len(header), idx, cand)
	}
	if cand < 0 {
		cand = firstFreeColumn(len(header), idx, orig)
	}
	return idx, orig, cand, true
}

func firstFreeColumn(width int, taken ...int) int {
	for i := 0; i < width; i++ {
		free := true
		for _, t := range taken {
			if i == t {
				free = false
				break
			}
		}
		if free {
			return i
		}
	}
	return width
}
