package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigLayers(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	configPath := filepath.Join(dir, "config.json")

	if err := os.WriteFile(envPath, []byte("OPPONENT_THINKING=low\nDAY_DURATION=90\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("OPPONENT_THINKING") })
	t.Setenv("DAY_DURATION", "120") // real environment beats .env
	t.Setenv("PLAYERS", "8")
	t.Setenv("AI_TIMEOUT", "10s")

	if err := os.WriteFile(configPath, []byte(`{"players": 6, "tick": "500ms", "opponent_provider": "ollama"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := loadConfig(configPath, envPath)

	if cfg.OpponentThinking != "low" {
		t.Errorf("OpponentThinking = %q, want low from .env", cfg.OpponentThinking)
	}
	if cfg.DayDuration != 120 {
		t.Errorf("DayDuration = %d, want 120 from env", cfg.DayDuration)
	}
	if cfg.AITimeout != 10*time.Second {
		t.Errorf("AITimeout = %v, want 10s from env", cfg.AITimeout)
	}
	if cfg.Players != 6 || cfg.Tick != 500*time.Millisecond || cfg.OpponentProvider != "ollama" {
		t.Errorf("JSON overlay not applied: players %d tick %v provider %q", cfg.Players, cfg.Tick, cfg.OpponentProvider)
	}
	if cfg.OpponentOllamaURL != "http://localhost:11434" {
		t.Errorf("default lost: %q", cfg.OpponentOllamaURL)
	}
}

func TestLoadConfigMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := loadConfig(filepath.Join(dir, "none.json"), filepath.Join(dir, "none.env"))
	want := defaultConfig()
	if cfg.DiscussionInterval != want.DiscussionInterval || cfg.AIRate != want.AIRate {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestApplyJSONOverlayOnlyPresentKeys(t *testing.T) {
	cfg := defaultConfig()
	cfg.OpponentModel = "from-env"

	var overlay map[string]json.RawMessage
	if err := json.Unmarshal([]byte(`{"dev": true, "ai_timeout": "5s", "players": "many", "tick": "soon"}`), &overlay); err != nil {
		t.Fatal(err)
	}
	applyJSONOverlay(&cfg, overlay)

	if !cfg.Dev || cfg.AITimeout != 5*time.Second {
		t.Errorf("dev %v timeout %v, want true and 5s", cfg.Dev, cfg.AITimeout)
	}
	if cfg.Players != defaultConfig().Players || cfg.Tick != time.Second {
		t.Errorf("bad values changed the config: players %d tick %v", cfg.Players, cfg.Tick)
	}
	if cfg.OpponentModel != "from-env" {
		t.Errorf("absent key overwrote OpponentModel: %q", cfg.OpponentModel)
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fv := registerFlags(fs)
	if err := fs.Parse([]string{"-players", "4", "-spectate", "-opponent-provider", "groq", "-tick", "250ms"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg := defaultConfig()
	cfg.OpponentModel = "from-json"
	fv.applyTo(&cfg)

	if cfg.Players != 4 || !cfg.Spectate || cfg.OpponentProvider != "groq" || cfg.Tick != 250*time.Millisecond {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.OpponentModel != "from-json" {
		t.Errorf("unset flag overwrote OpponentModel: %q", cfg.OpponentModel)
	}
	if *fv.configPath != "config.json" || *fv.envPath != ".env" {
		t.Errorf("file flag defaults = %q, %q", *fv.configPath, *fv.envPath)
	}
}

func TestToOpponentConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.OpponentProvider = "openai-compatible"
	cfg.OpponentURL = "http://localhost:8000/v1"
	cfg.AIRate = 0.5

	oc := cfg.toOpponentConfig()
	if oc.Provider != cfg.OpponentProvider || oc.URL != cfg.OpponentURL || oc.Rate != 0.5 {
		t.Errorf("opponent config = %+v", oc)
	}
	if lc := cfg.toLogConfig(); lc.OutputDir != "" || lc.Debug {
		t.Errorf("log config = %+v, want logging off", lc)
	}
}
