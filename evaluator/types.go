package evaluator

import (
	"encoding/json"

	"yashubustudio/texteval/internal/backend"
	"yashubustudio/texteval/internal/scoring"
)

// MetricBundle is the fixed-shape result of scoring one (original, candidate)
// pair. Metrics that could not be computed are 0.
type MetricBundle struct {
	// LexicalOverlap is smoothed BLEU of candidate against original, 0..100.
	LexicalOverlap float64 `json:"lexicalOverlap"`
	// Fluency is candidate perplexity; lower is more fluent, 0 means unscored.
	Fluency              float64 `json:"fluency"`
	ReadabilityOriginal  float64 `json:"readabilityOriginal"`
	ReadabilityCandidate float64 `json:"readabilityCandidate"`
	// ReadabilityDelta is ReadabilityOriginal - ReadabilityCandidate.
	ReadabilityDelta float64 `json:"readabilityDelta"`
}

// MetricFailure records why a metric fell back to 0.
type MetricFailure struct {
	Metric string
	Err    error
}

func (f MetricFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Metric string `json:"metric"`
		Error  string `json:"error"`
	}{f.Metric, msg})
}

// Diagnostics lists the soft failures of one evaluation.
type Diagnostics []MetricFailure

// Err returns the failure recorded for metric, if any.
func (d Diagnostics) Err(metric string) error {
	for _, f := range d {
		if f.Metric == metric {
			return f.Err
		}
	}
	return nil
}

// Metric names used in Diagnostics and logs.
const (
	MetricLexical     = "lexical"
	MetricFluency     = "fluency"
	MetricReadability = "readability"
)

type (
	RougeScore = scoring.RougeScore
	TextStats  = scoring.TextStats
	Params     = backend.Params
	Task       = backend.Task
)

const (
	TaskTranslate  = backend.TaskTranslate
	TaskSummarize  = backend.TaskSummarize
	TaskParaphrase = backend.TaskParaphrase
)

// Readability groups the grade-level and ease indices of one text.
type Readability struct {
	FleschKincaidGrade        float64 `json:"fleschKincaidGrade"`
	FleschReadingEase         float64 `json:"fleschReadingEase"`
	GunningFog                float64 `json:"gunningFog"`
	SMOGIndex                 float64 `json:"smogIndex"`
	AutomatedReadabilityIndex float64 `json:"automatedReadabilityIndex"`
	ColemanLiauIndex          float64 `json:"colemanLiauIndex"`
}

// Report is the extended evaluation shown on the evaluation screen.
type Report struct {
	Bundle      MetricBundle `json:"bundle"`
	Diagnostics Diagnostics  `json:"diagnostics,omitempty"`

	Rouge1 RougeScore `json:"rouge1"`
	Rouge2 RougeScore `json:"rouge2"`
	RougeL RougeScore `json:"rougeL"`
	Rating string     `json:"rating"`

	ReadabilityOriginal  Readability `json:"readabilityOriginal"`
	ReadabilityCandidate Readability `json:"readabilityCandidate"`

	StatsOriginal  TextStats `json:"statsOriginal"`
	StatsCandidate TextStats `json:"statsCandidate"`

	// CompressionRatio is the percentage of words removed from the original.
	CompressionRatio float64 `json:"compressionRatio"`
	WordEditRate     float64 `json:"wordEditRate"`
	CharEditRate     float64 `json:"charEditRate"`
}

// ReferenceEntry is one gold (original, transformed) pair from a dataset.
type ReferenceEntry struct {
	Original    string `json:"original"`
	Transformed string `json:"transformed"`
}

// Comparison scores a candidate and, when the original has a gold pair, the
// gold transform through the same code path.
type Comparison struct {
	Generated       MetricBundle    `json:"generated"`
	Reference       *ReferenceEntry `json:"reference,omitempty"`
	ReferenceBundle *MetricBundle   `json:"referenceBundle,omitempty"`
}

// Pair is one row of a batch evaluation file.
type Pair struct {
	Index     string `json:"index,omitempty"`
	Original  string `json:"original"`
	Candidate string `json:"candidate"`
}

// PairResult is the evaluation of one Pair.
type PairResult struct {
	Pair        Pair         `json:"pair"`
	Bundle      MetricBundle `json:"bundle"`
	Diagnostics Diagnostics  `json:"diagnostics,omitempty"`
}

// FluencyConfig locates the causal LM used for perplexity.
type FluencyConfig struct {
	ModelID       string   `json:"modelId"`
	OrtDLL        string   `json:"ortDll"`
	ModelPath     string   `json:"modelPath"`
	TokenizerPath string   `json:"tokenizerPath"`
	MaxSeqLen     int      `json:"maxSeqLen"`
	VocabSize     int      `json:"vocabSize"`
	InputNames    []string `json:"inputNames,omitempty"`
	OutputName    string   `json:"outputName,omitempty"`
}

// TranslationConfig selects the chat backend that serves each target language.
type TranslationConfig struct {
	Provider       string            `json:"provider"`
	BaseURL        string            `json:"baseUrl"`
	APIKey         string            `json:"apiKey,omitempty"`
	Model          string            `json:"model"`
	Models         map[string]string `json:"models,omitempty"`
	Temperature    float64           `json:"temperature"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
}

// GenerationConfig selects the summarization and paraphrasing backend.
type GenerationConfig struct {
	Provider       string            `json:"provider"`
	BaseURL        string            `json:"baseUrl"`
	APIKey         string            `json:"apiKey,omitempty"`
	Model          string            `json:"model"`
	Models         map[string]string `json:"models,omitempty"`
	MaxTokens      int               `json:"maxTokens"`
	Temperature    float64           `json:"temperature"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
}

// LexicalConfig picks the overlap scorer.
type LexicalConfig struct {
	Scorer   string `json:"scorer"`
	MaxOrder int    `json:"maxOrder"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Fluency       FluencyConfig     `json:"fluency"`
	Translation   TranslationConfig `json:"translation"`
	Generation    GenerationConfig  `json:"generation"`
	Lexical       LexicalConfig     `json:"lexical"`
	ReferencePath string            `json:"referencePath"`
	Log           LogConfig         `json:"log"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Fluency.ModelID == "" {
		c.Fluency.ModelID = "gpt2"
	}
	if c.Fluency.MaxSeqLen <= 0 {
		c.Fluency.MaxSeqLen = 1024
	}
	if c.Translation.Provider == "" {
		c.Translation.Provider = "ollama"
	}
	if c.Translation.Model == "" {
		c.Translation.Model = "llama3.1"
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = 60
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = "ollama"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "llama3.1"
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 256
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = 120
	}
	if c.Lexical.Scorer == "" {
		c.Lexical.Scorer = "bleu"
	}
	if c.Lexical.MaxOrder <= 0 {
		c.Lexical.MaxOrder = scoring.DefaultMaxOrder
	}
	if c.ReferencePath == "" {
		c.ReferencePath = "summary.csv"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}
