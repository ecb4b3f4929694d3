package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yashubustudio/texteval/evaluator"
)

var resultHeader = []string{
	"index", "original", "candidate",
	"lexical_overlap", "fluency",
	"readability_original", "readability_candidate", "readability_delta",
	"diagnostics",
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("result_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeResultCSV(path string, results []evaluator.PairResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(resultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		index := r.Pair.Index
		if index == "" {
			index = strconv.Itoa(i + 1)
		}
		b := r.Bundle
		row := []string{
			index, r.Pair.Original, r.Pair.Candidate,
			formatScore(b.LexicalOverlap), formatScore(b.Fluency),
			formatScore(b.ReadabilityOriginal), formatScore(b.ReadabilityCandidate), formatScore(b.ReadabilityDelta),
			formatDiagnostics(r.Diagnostics),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDiagnostics(diag evaluator.Diagnostics) string {
	parts := make([]string, 0, len(diag))
	for _, d := range diag {
		parts = append(parts, d.Metric+": "+d.Err.Error())
	}
	return strings.Join(parts, "; ")
}

func printSummary(w io.Writer, results []evaluator.PairResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "==== evaluation preview ====")
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s\n", i+1, summarizePair(r.Pair))
		b := r.Bundle
		fmt.Fprintf(w, "    lexical=%.2f fluency=%.2f readability=%.2f -> %.2f (delta %.2f)\n",
			b.LexicalOverlap, b.Fluency, b.ReadabilityOriginal, b.ReadabilityCandidate, b.ReadabilityDelta)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(w, "    ! %s unavailable: %v\n", d.Metric, d.Err)
		}
	}
}

func summarizePair(p evaluator.Pair) string {
	if idx := strings.TrimSpace(p.Index); idx != "" {
		return "#" + idx
	}
	text := strings.TrimSpace(p.Original)
	if text == "" {
		return "(empty text)"
	}
	runeText := []rune(text)
	if len(runeText) > 60 {
		return string(runeText[:60]) + "…"
	}
	return text
}
