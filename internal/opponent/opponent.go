// Package opponent drives AI players with a language model.
package opponent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"werewolf-solo/internal/game"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// Config selects and tunes the model provider.
type Config struct {
	Provider    string  // ollama | openai | claude | gemini | groq | openai-compatible
	Model       string  // model name
	OllamaURL   string  // Ollama server URL
	URL         string  // base URL for openai-compatible
	APIKey      string  // API key for openai-compatible
	GroqAPIKey  string  // API key for groq
	Temperature string  // float 0-1 as string, overrides the per-call defaults
	Thinking    string  // none | low | medium | high | auto
	Rate        float64 // requests per second, 0 for unlimited
}

// Opponent implements game.Decider over an llms.Model.
type Opponent struct {
	llm     llms.Model
	tuning  tuning
	limiter *rate.Limiter
}

var _ game.Decider = (*Opponent)(nil)

// New connects to the configured provider. It returns nil and no error when
// no provider is set; the game then plays every AI at random.
func New(ctx context.Context, cfg Config) (*Opponent, error) {
	var llm llms.Model
	var err error

	switch cfg.Provider {
	case "":
		log.Printf("Opponent: disabled (set opponent_provider to enable)")
		return nil, nil
	case "ollama":
		llm, err = ollama.New(ollama.WithModel(cfg.Model), ollama.WithServerURL(cfg.OllamaURL))
	case "openai":
		llm, err = openai.New(openai.WithModel(cfg.Model))
	case "claude":
		llm, err = anthropic.New(anthropic.WithModel(cfg.Model))
	case "gemini":
		llm, err = googleai.New(ctx, googleai.WithDefaultModel(cfg.Model))
	case "groq":
		llm, err = openai.New(
			openai.WithModel(cfg.Model),
			openai.WithBaseURL(groqBaseURL),
			openai.WithToken(cfg.GroqAPIKey),
		)
	case "openai-compatible":
		if cfg.URL == "" {
			return nil, errors.New("opponent_url is required for the openai-compatible provider")
		}
		opts := []openai.Option{openai.WithModel(cfg.Model), openai.WithBaseURL(cfg.URL)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		llm, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown opponent provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s (%s): %w", cfg.Provider, cfg.Model, err)
	}

	log.Printf("Opponent: %s model=%s", cfg.Provider, cfg.Model)
	return NewWithModel(llm, cfg), nil
}

// NewWithModel wraps an existing model. Provider fields of cfg are ignored.
func NewWithModel(llm llms.Model, cfg Config) *Opponent {
	o := &Opponent{llm: llm, tuning: parseTuning(cfg)}
	if cfg.Rate > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return o
}

// callProfile is the shape of one kind of request.
type callProfile struct {
	maxTokens   int // 0 leaves the provider default
	temperature float64
}

var (
	targetCall  = callProfile{maxTokens: 10, temperature: 0.5}
	speakerCall = callProfile{temperature: 0.7}
	speechCall  = callProfile{maxTokens: 200, temperature: 0.7}
)

// tuning holds the configured overrides. A nil temperature keeps each
// profile's own.
type tuning struct {
	temperature *float64
	thinking    llms.ThinkingMode
}

func parseTuning(cfg Config) tuning {
	var t tuning
	if cfg.Temperature != "" {
		if f, err := strconv.ParseFloat(cfg.Temperature, 64); err == nil {
			t.temperature = &f
			log.Printf("Opponent: temperature=%.2f", f)
		} else {
			log.Printf("Opponent: invalid temperature %q: %v", cfg.Temperature, err)
		}
	}
	switch mode := llms.ThinkingMode(cfg.Thinking); mode {
	case "":
	case llms.ThinkingModeNone, llms.ThinkingModeLow, llms.ThinkingModeMedium, llms.ThinkingModeHigh, llms.ThinkingModeAuto:
		t.thinking = mode
		log.Printf("Opponent: thinking=%s", mode)
	default:
		log.Printf("Opponent: invalid thinking %q (valid: none, low, medium, high, auto)", cfg.Thinking)
	}
	return t
}

// options merges a call profile with the configured overrides.
func (t tuning) options(p callProfile) []llms.CallOption {
	temp := p.temperature
	if t.temperature != nil {
		temp = *t.temperature
	}
	opts := []llms.CallOption{llms.WithTemperature(temp)}
	if p.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.maxTokens))
	}
	if t.thinking != "" {
		opts = append(opts, llms.WithThinkingMode(t.thinking))
	}
	return opts
}

// generate sends one system/user exchange and returns the trimmed reply.
func (o *Opponent) generate(ctx context.Context, p callProfile, system, user string) (string, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	messages := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeSystem, system)}
	if user != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, user))
	}
	resp, err := o.llm.GenerateContent(ctx, messages, o.tuning.options(p)...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (o *Opponent) ChooseVoteTarget(ctx context.Context, actor game.Player, view game.View) (string, error) {
	return o.chooseTarget(ctx, actor, game.ActionVote, view)
}

func (o *Opponent) ChooseNightActionTarget(ctx context.Context, actor game.Player, action game.ActionType, view game.View) (string, error) {
	return o.chooseTarget(ctx, actor, action, view)
}

func (o *Opponent) chooseTarget(ctx context.Context, actor game.Player, action game.ActionType, view game.View) (string, error) {
	return o.generate(ctx, targetCall,
		actionSystemPrompt(actor, action, view),
		actionUserPrompt(actor, action, view),
	)
}

// ChooseNextSpeaker asks the model, as discussion facilitator, who talks next.
func (o *Opponent) ChooseNextSpeaker(ctx context.Context, players []game.Player, messages []game.Message, day int) (string, error) {
	return o.generate(ctx, speakerCall, facilitatorPrompt(players, messages, day), "")
}

// GenerateUtterance produces one line of discussion for actor.
func (o *Opponent) GenerateUtterance(ctx context.Context, actor game.Player, view game.View) (string, error) {
	return o.generate(ctx, speechCall,
		speechSystemPrompt(actor, view),
		speechUserPrompt(view),
	)
}
