package scorer

import "encoding/json"

// Column names expected in a rubric file.
const (
	ColumnCriterionID = "criterion_id"
	ColumnCriterion   = "criterion"
	ColumnDescription = "description"
	ColumnKeywords    = "keywords"
	ColumnWeight      = "weight"
	ColumnMinWords    = "min_words"
	ColumnMaxWords    = "max_words"
)

// RubricColumns lists every column a loader must supply for each row.
var RubricColumns = []string{
	ColumnCriterionID,
	ColumnCriterion,
	ColumnDescription,
	ColumnKeywords,
	ColumnWeight,
	ColumnMinWords,
	ColumnMaxWords,
}

// RubricRow is a raw rubric record as produced by a loader. Every field is
// present; unknown or missing cells are the empty string.
type RubricRow struct {
	CriterionID string `json:"criterion_id" yaml:"criterion_id"`
	Criterion   string `json:"criterion" yaml:"criterion"`
	Description string `json:"description" yaml:"description"`
	Keywords    string `json:"keywords" yaml:"keywords"`
	Weight      string `json:"weight" yaml:"weight"`
	MinWords    string `json:"min_words" yaml:"min_words"`
	MaxWords    string `json:"max_words" yaml:"max_words"`
}

// Criterion is one parsed, scored dimension of a rubric.
type Criterion struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Weight      float64  `json:"weight"`
	MinWords    *int     `json:"min_words,omitempty"`
	MaxWords    *int     `json:"max_words,omitempty"`
}

// Transcript holds the values derived once from the submitted text.
type Transcript struct {
	Normalized string
	Lower      string
	WordCount  int
}

// CriterionResult is the breakdown for a single criterion.
type CriterionResult struct {
	Criterion          string   `json:"criterion"`
	Description        string   `json:"description"`
	Weight             float64  `json:"weight"`
	FoundKeywords      []string `json:"found_keywords"`
	KeywordFraction    float64  `json:"keyword_fraction"`
	SemanticSimilarity float64  `json:"semantic_similarity"`
	LengthFraction     float64  `json:"length_fraction"`
	CriterionScore     float64  `json:"criterion_score"`
}

// ScoreReport is the full result of scoring a transcript against a rubric.
type ScoreReport struct {
	OverallScore float64           `json:"overall_score"`
	WordCount    int               `json:"word_count"`
	PerCriterion []CriterionResult `json:"per_criterion"`
}

// EmbedderConfig selects and configures the similarity back end.
type EmbedderConfig struct {
	// Provider is one of "ort", "ollama", "openai" or "none".
	Provider      string `json:"provider"`
	OrtDLL        string `json:"ortDll"`
	ModelPath     string `json:"modelPath"`
	TokenizerPath string `json:"tokenizerPath"`
	MaxSeqLen     int    `json:"maxSeqLen"`
	CacheDir      string `json:"cacheDir"`
	ModelID       string `json:"modelId"`
	OllamaURL     string `json:"ollamaUrl"`
	OllamaModel   string `json:"ollamaModel"`
	OpenAIAPIKey  string `json:"openaiApiKey,omitempty"`
	OpenAIModel   string `json:"openaiModel"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	RubricPath   string         `json:"rubricPath"`
	WatchRubric  bool           `json:"watchRubric"`
	Workers      int            `json:"workers"`
	LogLevel     string         `json:"logLevel"`
	HTTPAddr     string         `json:"httpAddr"`
	CORSOrigins  []string       `json:"corsOrigins"`
	OTELEndpoint string         `json:"otelEndpoint"`
	OTELInsecure bool           `json:"otelInsecure"`
	Embedder     EmbedderConfig `json:"embedder"`
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
	if c.RubricPath == "" {
		c.RubricPath = DefaultRubricXLSX
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":5000"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:5000"}
	}
	if c.Embedder.Provider == "" {
		c.Embedder.Provider = ProviderORT
	}
	if c.Embedder.MaxSeqLen == 0 {
		c.Embedder.MaxSeqLen = 256
	}
	if c.Embedder.ModelPath == "" {
		c.Embedder.ModelPath = "./models/all-MiniLM-L6-v2/model.onnx"
	}
	if c.Embedder.TokenizerPath == "" {
		c.Embedder.TokenizerPath = "./models/all-MiniLM-L6-v2/tokenizer.json"
	}
	if c.Embedder.OllamaURL == "" {
		c.Embedder.OllamaURL = "http://localhost:11434"
	}
	if c.Embedder.OllamaModel == "" {
		c.Embedder.OllamaModel = "all-minilm"
	}
	if c.Embedder.OpenAIModel == "" {
		c.Embedder.OpenAIModel = "text-embedding-3-small"
	}
}

// RubricCandidates lists the rubric paths to try. The default xlsx location
// falls back to the default csv one.
func (c Config) RubricCandidates() []string {
	if c.RubricPath == "" || c.RubricPath == DefaultRubricXLSX {
		return []string{DefaultRubricXLSX, DefaultRubricCSV}
	}
	return []string{c.RubricPath}
}
