package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"werewolf-solo/internal/applog"
	"werewolf-solo/internal/game"
	"werewolf-solo/internal/opponent"
)

// AppConfig holds all configuration.
// Priority (lowest → highest): defaults < .env file < env vars < JSON config file < CLI flags.
type AppConfig struct {
	// Engine
	DB                 string        `json:"db" env:"DB"`   // sqlite connection string for the session log
	Dev                bool          `json:"dev" env:"DEV"` // dev mode: database dumps on errors
	Players            int           `json:"players" env:"PLAYERS"`
	Spectate           bool          `json:"spectate" env:"SPECTATE"` // all seats are AI
	Seed               int64         `json:"seed" env:"SEED"`         // 0 picks a random seed
	DayDuration        int           `json:"day_duration" env:"DAY_DURATION"`               // ticks
	DiscussionInterval int           `json:"discussion_interval" env:"DISCUSSION_INTERVAL"` // ticks
	Tick               time.Duration `json:"tick" env:"TICK"`
	AITimeout          time.Duration `json:"ai_timeout" env:"AI_TIMEOUT"`
	AIRate             float64       `json:"ai_rate" env:"AI_RATE"` // model requests per second, 0 for unlimited

	// Logging (extended diagnostics, off by default)
	LogOutputDir string `json:"log_output_dir" env:"LOG_OUTPUT_DIR"`
	LogState     bool   `json:"log_state" env:"LOG_STATE"`
	LogAI        bool   `json:"log_ai" env:"LOG_AI"`
	LogDebug     bool   `json:"log_debug" env:"LOG_DEBUG"`

	// AI opponents
	OpponentProvider    string `json:"opponent_provider" env:"OPPONENT_PROVIDER"`       // ollama | openai | claude | gemini | groq | openai-compatible
	OpponentModel       string `json:"opponent_model" env:"OPPONENT_MODEL"`             // model name
	OpponentOllamaURL   string `json:"opponent_ollama_url" env:"OPPONENT_OLLAMA_URL"`   // Ollama server URL
	OpponentURL         string `json:"opponent_url" env:"OPPONENT_URL"`                 // base URL for openai-compatible
	OpponentAPIKey      string `json:"opponent_api_key" env:"OPPONENT_API_KEY"`         // API key for openai-compatible
	OpponentTemperature string `json:"opponent_temperature" env:"OPPONENT_TEMPERATURE"` // float 0-1 as string
	OpponentThinking    string `json:"opponent_thinking" env:"OPPONENT_THINKING"`       // none | low | medium | high | auto
	GroqAPIKey          string `json:"groq_api_key" env:"GROQ_API_KEY"`                 // API key for groq provider
}

func (cfg AppConfig) toLogConfig() applog.Config {
	return applog.Config{
		OutputDir: cfg.LogOutputDir,
		LogState:  cfg.LogState,
		LogAI:     cfg.LogAI,
		Debug:     cfg.LogDebug,
	}
}

func (cfg AppConfig) toOpponentConfig() opponent.Config {
	return opponent.Config{
		Provider:    cfg.OpponentProvider,
		Model:       cfg.OpponentModel,
		OllamaURL:   cfg.OpponentOllamaURL,
		URL:         cfg.OpponentURL,
		APIKey:      cfg.OpponentAPIKey,
		GroqAPIKey:  cfg.GroqAPIKey,
		Temperature: cfg.OpponentTemperature,
		Thinking:    cfg.OpponentThinking,
		Rate:        cfg.AIRate,
	}
}

func defaultConfig() AppConfig {
	return AppConfig{
		DB:                 "file::memory:?cache=shared",
		Players:            game.DefaultPlayerCount,
		DayDuration:        game.DayDuration,
		DiscussionInterval: game.DiscussionInterval,
		Tick:               time.Second,
		AITimeout:          30 * time.Second,
		AIRate:             2,
		OpponentOllamaURL:  "http://localhost:11434",
	}
}

// loadConfig builds a config by layering: defaults → .env → env vars → JSON config file.
// CLI flag overrides are applied separately by flagValues.applyTo after parsing.
func loadConfig(configPath, envPath string) AppConfig {
	cfg := defaultConfig()

	// Layer 1: .env file. Variables already in the environment win.
	if err := godotenv.Load(envPath); err == nil {
		log.Printf("Config: loaded %s", envPath)
	} else if !os.IsNotExist(err) {
		log.Printf("Config: failed to read %s: %v", envPath, err)
	}

	// Layer 2: env vars, only those that are set
	if err := env.Parse(&cfg); err != nil {
		log.Printf("Config: failed to parse environment: %v", err)
	}

	// Layer 3: JSON config file; only keys present in the file override env vars
	if data, err := os.ReadFile(configPath); err == nil {
		var overlay map[string]json.RawMessage
		if err := json.Unmarshal(data, &overlay); err != nil {
			log.Printf("Config: failed to parse %s: %v", configPath, err)
		} else {
			applyJSONOverlay(&cfg, overlay)
			log.Printf("Config: loaded from %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Config: failed to read %s: %v", configPath, err)
	}

	return cfg
}

// applyJSONOverlay only sets fields that are explicitly present in the JSON map.
func applyJSONOverlay(cfg *AppConfig, m map[string]json.RawMessage) {
	set := func(key string, dst any) {
		if v, ok := m[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				log.Printf("Config: bad value for %s: %v", key, err)
			}
		}
	}
	duration := func(key string, dst *time.Duration) {
		var s string
		if _, ok := m[key]; !ok {
			return
		}
		set(key, &s)
		if d, err := time.ParseDuration(s); err == nil {
			*dst = d
		} else {
			log.Printf("Config: bad duration for %s: %v", key, err)
		}
	}

	set("db", &cfg.DB)
	set("dev", &cfg.Dev)
	set("players", &cfg.Players)
	set("spectate", &cfg.Spectate)
	set("seed", &cfg.Seed)
	set("day_duration", &cfg.DayDuration)
	set("discussion_interval", &cfg.DiscussionInterval)
	duration("tick", &cfg.Tick)
	duration("ai_timeout", &cfg.AITimeout)
	set("ai_rate", &cfg.AIRate)
	set("log_output_dir", &cfg.LogOutputDir)
	set("log_state", &cfg.LogState)
	set("log_ai", &cfg.LogAI)
	set("log_debug", &cfg.LogDebug)
	set("opponent_provider", &cfg.OpponentProvider)
	set("opponent_model", &cfg.OpponentModel)
	set("opponent_ollama_url", &cfg.OpponentOllamaURL)
	set("opponent_url", &cfg.OpponentURL)
	set("opponent_api_key", &cfg.OpponentAPIKey)
	set("opponent_temperature", &cfg.OpponentTemperature)
	set("opponent_thinking", &cfg.OpponentThinking)
	set("groq_api_key", &cfg.GroqAPIKey)
}

// flagValues holds pointers to all registered CLI flags.
type flagValues struct {
	fs                  *flag.FlagSet
	configPath          *string
	envPath             *string
	db                  *string
	dev                 *bool
	players             *int
	spectate            *bool
	seed                *int64
	dayDuration         *int
	discussionInterval  *int
	tick                *time.Duration
	aiTimeout           *time.Duration
	aiRate              *float64
	logOutputDir        *string
	logState            *bool
	logAI               *bool
	logDebug            *bool
	opponentProvider    *string
	opponentModel       *string
	opponentOllamaURL   *string
	opponentURL         *string
	opponentAPIKey      *string
	opponentTemperature *string
	opponentThinking    *string
	groqAPIKey          *string
}

// registerFlags registers all CLI flags on fs and returns pointers to their values.
// Parse fs after this, then applyTo to layer them over the loaded config.
func registerFlags(fs *flag.FlagSet) flagValues {
	return flagValues{
		fs:                  fs,
		configPath:          fs.String("config", "config.json", "path to JSON config file"),
		envPath:             fs.String("env", ".env", "path to .env file"),
		db:                  fs.String("db", "", "sqlite connection string for the session log"),
		dev:                 fs.Bool("dev", false, "enable development mode (database dumps on error)"),
		players:             fs.Int("players", 0, "number of seats"),
		spectate:            fs.Bool("spectate", false, "watch an all-AI game"),
		seed:                fs.Int64("seed", 0, "random seed (0 for random)"),
		dayDuration:         fs.Int("day-duration", 0, "day length in ticks"),
		discussionInterval:  fs.Int("discussion-interval", 0, "ticks between AI discussion turns"),
		tick:                fs.Duration("tick", 0, "length of one tick"),
		aiTimeout:           fs.Duration("ai-timeout", 0, "timeout for one AI decision"),
		aiRate:              fs.Float64("ai-rate", 0, "model requests per second"),
		logOutputDir:        fs.String("log-output-dir", "", "directory for extended log files"),
		logState:            fs.Bool("log-state", false, "log state dumps"),
		logAI:               fs.Bool("log-ai", false, "log AI decisions"),
		logDebug:            fs.Bool("log-debug", false, "enable debug logging"),
		opponentProvider:    fs.String("opponent-provider", "", "AI opponent provider (ollama|openai|claude|gemini|groq|openai-compatible)"),
		opponentModel:       fs.String("opponent-model", "", "AI opponent model name"),
		opponentOllamaURL:   fs.String("opponent-ollama-url", "", "Ollama server URL"),
		opponentURL:         fs.String("opponent-url", "", "base URL for openai-compatible provider"),
		opponentAPIKey:      fs.String("opponent-api-key", "", "API key for opponent provider"),
		opponentTemperature: fs.String("opponent-temperature", "", "sampling temperature 0-1"),
		opponentThinking:    fs.String("opponent-thinking", "", "thinking mode: none|low|medium|high|auto"),
		groqAPIKey:          fs.String("groq-api-key", "", "Groq API key"),
	}
}

// applyTo overlays any CLI flags that were explicitly set onto cfg.
// Flags that were not passed on the command line are ignored (env/JSON values win).
func (fv flagValues) applyTo(cfg *AppConfig) {
	fv.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DB = *fv.db
		case "dev":
			cfg.Dev = *fv.dev
		case "players":
			cfg.Players = *fv.players
		case "spectate":
			cfg.Spectate = *fv.spectate
		case "seed":
			cfg.Seed = *fv.seed
		case "day-duration":
			cfg.DayDuration = *fv.dayDuration
		case "discussion-interval":
			cfg.DiscussionInterval = *fv.discussionInterval
		case "tick":
			cfg.Tick = *fv.tick
		case "ai-timeout":
			cfg.AITimeout = *fv.aiTimeout
		case "ai-rate":
			cfg.AIRate = *fv.aiRate
		case "log-output-dir":
			cfg.LogOutputDir = *fv.logOutputDir
		case "log-state":
			cfg.LogState = *fv.logState
		case "log-ai":
			cfg.LogAI = *fv.logAI
		case "log-debug":
			cfg.LogDebug = *fv.logDebug
		case "opponent-provider":
			cfg.OpponentProvider = *fv.opponentProvider
		case "opponent-model":
			cfg.OpponentModel = *fv.opponentModel
		case "opponent-ollama-url":
			cfg.OpponentOllamaURL = *fv.opponentOllamaURL
		case "opponent-url":
			cfg.OpponentURL = *fv.opponentURL
		case "opponent-api-key":
			cfg.OpponentAPIKey = *fv.opponentAPIKey
		case "opponent-temperature":
			cfg.OpponentTemperature = *fv.opponentTemperature
		case "opponent-thinking":
			cfg.OpponentThinking = *fv.opponentThinking
		case "groq-api-key":
			cfg.GroqAPIKey = *fv.groqAPIKey
		}
	})
}
