package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config structure
type Config struct {
	LLMProvider     string `json:"llmProvider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	ModelName       string `json:"modelName"`
	MaxTokens       int    `json:"maxTokens"`
	Language        string `json:"language"`
	DataCacheDir    string `json:"dataCacheDir"`
	MaxContextTurns int    `json:"maxContextTurns"`
	ExcerptLimit    int    `json:"excerptLimit"`
	DetailedLog     bool   `json:"detailedLog"`
}

// Default returns a configuration with sensible defaults applied.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LLMProvider:     "OpenAI",
		ModelName:       "gpt-4o-mini",
		MaxTokens:       4096,
		Language:        "English",
		DataCacheDir:    filepath.Join(home, "DiveData"),
		MaxContextTurns: 3,
		ExcerptLimit:    300,
	}
}

// Load reads the configuration file from dir, applies defaults for empty
// fields, and finally applies environment overrides (a .env file next to the
// binary is honored, matching the original deployment).
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, "config.json")
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the configuration to dir/config.json.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = def.LLMProvider
	}
	if cfg.ModelName == "" {
		cfg.ModelName = def.ModelName
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.DataCacheDir == "" {
		cfg.DataCacheDir = def.DataCacheDir
	}
	if cfg.MaxContextTurns <= 0 {
		cfg.MaxContextTurns = def.MaxContextTurns
	}
	if cfg.ExcerptLimit <= 0 {
		cfg.ExcerptLimit = def.ExcerptLimit
	}
}

func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.ModelName = v
	}
}
