package evaluator

import "sync"

// ColumnCandidates defines possible header names for auto-detecting CSV/TSV columns.
type ColumnCandidates struct {
	Original    []string `json:"original"`
	Transformed []string `json:"transformed"`
	Candidate   []string `json:"candidate"`
	Index       []string `json:"index"`
}

var (
	columnCandidatesMu  sync.RWMutex
	activeColumnOptions = defaultColumnCandidates()
)

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Original:    []string{"original", "original_text", "text", "article", "source", "input", "document"},
		Transformed: []string{"summary", "reference", "target", "paraphrase", "translation", "gold", "highlights"},
		Candidate:   []string{"candidate", "generated", "prediction", "output", "hypothesis", "summary"},
		Index:       []string{"id", "index", "no"},
	}
}

// DefaultColumnCandidates returns the built-in column detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates().clone()
}

// SetColumnCandidates updates the column detection candidates. Fields left nil
// fall back to the built-in defaults.
func SetColumnCandidates(candidates ColumnCandidates) {
	columnCandidatesMu.Lock()
	defer columnCandidatesMu.Unlock()
	activeColumnOptions = candidates.withDefaults()
}

func getColumnCandidates() ColumnCandidates {
	columnCandidatesMu.RLock()
	defer columnCandidatesMu.RUnlock()
	return activeColumnOptions.clone()
}

func (c ColumnCandidates) withDefaults() ColumnCandidates {
	defaults := defaultColumnCandidates()
	return ColumnCandidates{
		Original:    pickStrings(c.Original, defaults.Original),
		Transformed: pickStrings(c.Transformed, defaults.Transformed),
		Candidate:   pickStrings(c.Candidate, defaults.Candidate),
		Index:       pickStrings(c.Index, defaults.Index),
	}
}

func (c ColumnCandidates) clone() ColumnCandidates {
	return ColumnCandidates{
		Original:    cloneStrings(c.Original),
		Transformed: cloneStrings(c.Transformed),
		Candidate:   cloneStrings(c.Candidate),
		Index:       cloneStrings(c.Index),
	}
}

func pickStrings(custom, fallback []string) []string {
	if custom == nil {
		return cloneStrings(fallback)
	}
	return cloneStrings(custom)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
