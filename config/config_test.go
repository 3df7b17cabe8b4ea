package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "divedata_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLMProvider != "OpenAI" {
		t.Errorf("Expected default provider OpenAI, got %s", cfg.LLMProvider)
	}
	if cfg.ModelName != "gpt-4o-mini" {
		t.Errorf("Expected default model, got %s", cfg.ModelName)
	}
	if cfg.MaxContextTurns != 3 || cfg.ExcerptLimit != 300 {
		t.Errorf("Expected context defaults 3/300, got %d/%d", cfg.MaxContextTurns, cfg.ExcerptLimit)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "divedata_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	want := Default()
	want.APIKey = "sk-test"
	want.BaseURL = "https://llm.example.com/v1"
	want.ModelName = "custom-model"
	want.MaxContextTurns = 5

	if err := Save(tmpDir, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.APIKey != want.APIKey || got.BaseURL != want.BaseURL ||
		got.ModelName != want.ModelName || got.MaxContextTurns != want.MaxContextTurns {
		t.Errorf("Round trip mismatch: got %+v", got)
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "divedata_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	partial := `{"apiKey": "sk-partial"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "sk-partial" {
		t.Errorf("Expected file value, got %s", cfg.APIKey)
	}
	if cfg.ModelName != "gpt-4o-mini" || cfg.MaxTokens != 4096 {
		t.Errorf("Missing fields should fall back to defaults, got %+v", cfg)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "divedata_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Expected error for corrupt config file")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "divedata_config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	t.Setenv("API_KEY", "sk-env")
	t.Setenv("MODEL_NAME", "env-model")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "sk-env" {
		t.Errorf("Expected env API key, got %s", cfg.APIKey)
	}
	if cfg.ModelName != "env-model" {
		t.Errorf("Expected env model override, got %s", cfg.ModelName)
	}
}
