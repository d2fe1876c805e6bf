package scorer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultConfigFile = "config.json"

// LoadConfig loads configuration from the given path or the default config.json,
// then applies SCORER_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	}
	applyEnv(&cfg)
	cfg.ApplyDefaults()
	if cfg.Embedder.CacheDir != "" {
		if err := os.MkdirAll(cfg.Embedder.CacheDir, 0o755); err != nil {
			return cfg, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	// API keys come from the environment, never from disk.
	cfg.Embedder.OpenAIAPIKey = ""
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.RubricPath = envStr("SCORER_RUBRIC_PATH", cfg.RubricPath)
	cfg.WatchRubric = envBool("SCORER_WATCH_RUBRIC", cfg.WatchRubric)
	cfg.Workers = envInt("SCORER_WORKERS", cfg.Workers)
	cfg.LogLevel = envStr("SCORER_LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPAddr = envStr("SCORER_HTTP_ADDR", cfg.HTTPAddr)
	if v := os.Getenv("SCORER_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	cfg.OTELEndpoint = envStr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)
	cfg.OTELInsecure = envBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.OTELInsecure)

	e := &cfg.Embedder
	e.Provider = envStr("SCORER_EMBEDDING_PROVIDER", e.Provider)
	e.OrtDLL = envStr("SCORER_ORT_DLL", e.OrtDLL)
	e.ModelPath = envStr("SCORER_MODEL_PATH", e.ModelPath)
	e.TokenizerPath = envStr("SCORER_TOKENIZER_PATH", e.TokenizerPath)
	e.MaxSeqLen = envInt("SCORER_MAX_SEQ_LEN", e.MaxSeqLen)
	e.CacheDir = envStr("SCORER_CACHE_DIR", e.CacheDir)
	e.OllamaURL = envStr("OLLAMA_URL", e.OllamaURL)
	e.OllamaModel = envStr("OLLAMA_MODEL", e.OllamaModel)
	e.OpenAIAPIKey = envStr("OPENAI_API_KEY", e.OpenAIAPIKey)
	e.OpenAIModel = envStr("SCORER_OPENAI_MODEL", e.OpenAIModel)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
