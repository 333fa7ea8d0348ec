// Package gemini implements batch translation on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	ErrInvalidConfig    = errors.New("invalid gemini config")
	ErrInvalidResponse  = errors.New("invalid gemini response")
	ErrContentBlocked   = errors.New("content blocked by safety filters")
	ErrTransientFailure = errors.New("transient gemini failure")
)

const promptTemplate = `Translate each string in the JSON array below from %s to %s.
Give the most common single-word or short-phrase translation for each entry.
Reply with only a JSON array of strings, with exactly %d elements, in the same order.

%s`

// Config holds translator settings
type Config struct {
	APIKey     string
	Model      string
	SourceLang string
	TargetLang string
	MaxRetries int
	RetryDelay time.Duration
}

// contentGenerator is the part of *genai.Models the translator uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Translator asks Gemini to translate a whole word list in one request
type Translator struct {
	models contentGenerator
	config Config
	logger *zap.Logger
	rng    *rand.Rand
}

// New creates a translator with a Gemini API client
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Translator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", ErrInvalidConfig, err)
	}

	return newTranslator(client.Models, cfg, logger)
}

func newTranslator(models contentGenerator, cfg Config, logger *zap.Logger) (*Translator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if cfg.SourceLang == "" || cfg.TargetLang == "" {
		return nil, fmt.Errorf("%w: source and target languages are required", ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	return &Translator{
		models: models,
		config: cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// TranslateBatch returns one translation per input word, in input order
func (t *Translator) TranslateBatch(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return []string{}, nil
	}

	payload, err := json.Marshal(words)
	if err != nil {
		return nil, fmt.Errorf("failed to encode words: %w", err)
	}
	prompt := fmt.Sprintf(promptTemplate, t.config.SourceLang, t.config.TargetLang, len(words), payload)

	for attempt := 0; ; attempt++ {
		out, err := t.call(ctx, prompt, len(words))
		if err == nil {
			t.logger.Info("Gemini translation succeeded",
				zap.Int("words", len(words)),
				zap.Int("attempt", attempt+1),
			)
			return out, nil
		}

		if errors.Is(err, ErrInvalidResponse) || errors.Is(err, ErrContentBlocked) {
			t.logger.Warn("Permanent Gemini error, not retrying", zap.Error(err))
			return nil, err
		}

		if attempt >= t.config.MaxRetries {
			t.logger.Warn("Maximum Gemini retry attempts reached",
				zap.Int("max_retries", t.config.MaxRetries),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, err)
		}

		delay := t.backoff(attempt)
		t.logger.Info("Retrying Gemini call after delay",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

func (t *Translator) call(ctx context.Context, prompt string, want int) ([]string, error) {
	resp, err := t.models.GenerateContent(ctx, t.config.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, ErrContentBlocked
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var out []string
	if err := json.Unmarshal([]byte(text.String()), &out); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON: %v", ErrInvalidResponse, err)
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: expected %d translations, got %d", ErrInvalidResponse, want, len(out))
	}

	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out, nil
}

// backoff returns base * 2^attempt scaled by a jitter factor in [0.5, 1)
func (t *Translator) backoff(attempt int) time.Duration {
	base := float64(t.config.RetryDelay) * math.Pow(2, float64(attempt))
	return time.Duration(base * (0.5 + t.rng.Float64()*0.5))
}
