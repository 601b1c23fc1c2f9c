package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/polisai/archwise/pkg/domain"
	"github.com/polisai/archwise/pkg/telemetry"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Source produces an architecture recommendation for a problem description.
type Source interface {
	Recommend(ctx context.Context, desc domain.ProblemDescription) (*domain.Recommendation, error)
}

// OpenAIConfig configures OpenAISource.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// OpenAISource calls an OpenAI-compatible chat completion API once per
// request. There is no retry.
type OpenAISource struct {
	client  *openai.Client
	cfg     OpenAIConfig
	prompts PromptProvider
	logger  *slog.Logger
	now     func() time.Time
}

// NewOpenAISource creates a source. A nil prompt provider uses the built-in
// prompts.
func NewOpenAISource(cfg OpenAIConfig, prompts PromptProvider, logger *slog.Logger) *OpenAISource {
	if logger == nil {
		logger = slog.Default()
	}
	if prompts == nil {
		prompts = DefaultPromptProvider{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return &OpenAISource{
		client:  openai.NewClientWithConfig(clientCfg),
		cfg:     cfg,
		prompts: prompts,
		logger:  logger.With("component", "recommend", "model", cfg.Model),
		now:     time.Now,
	}
}

// Recommend validates desc, asks the model and parses its reply. Invalid
// descriptions return domain.ErrInvalidProblem; every other failure is a
// *domain.DomainError wrapping domain.ErrRecommendationFailed.
func (s *OpenAISource) Recommend(ctx context.Context, desc domain.ProblemDescription) (*domain.Recommendation, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "recommend.openai",
		trace.WithAttributes(
			attribute.String("llm.model", s.cfg.Model),
			attribute.String("project.industry", desc.Industry),
		))
	defer span.End()

	start := s.now()
	rec, err := s.recommend(ctx, desc)
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrInvalidRecommendation):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}
	telemetry.RecordRecommendation(ctx, telemetry.RecommendationMetrics{
		Model:    s.cfg.Model,
		Outcome:  outcome,
		Duration: s.now().Sub(start),
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logger.Error("recommendation failed", "industry", desc.Industry, "outcome", outcome, "error", err)
		return nil, domain.NewRecommendationError(err)
	}

	rec.GeneratedAt = s.now().UTC()
	s.logger.Info("recommendation generated",
		"industry", desc.Industry,
		"architecture", rec.Architecture,
		"compliance_labels", len(rec.Compliance),
	)
	return rec, nil
}

func (s *OpenAISource) recommend(ctx context.Context, desc domain.ProblemDescription) (*domain.Recommendation, error) {
	if s.cfg.APIKey == "" {
		return nil, errors.New("llm api key not configured")
	}

	system, task, err := s.prompts.GetPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	prompt, err := BuildPrompt(task, desc)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        1,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completion choices returned", domain.ErrInvalidRecommendation)
	}

	return ParseRecommendation(resp.Choices[0].Message.Content)
}
