// Package llm adapts an OpenAI-compatible chat completion API to the
// analysis provider used by the signal generator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"FxPulse/internal/domain/service"
	"FxPulse/internal/service/metrics"
	"FxPulse/internal/services/prompt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// Option configures Client.
type Option func(*config)

type config struct {
	apiKey      string
	baseURL     string
	model       string
	timeout     time.Duration
	temperature float64
	httpClient  *http.Client
}

// WithAPIKey sets the bearer key.
func WithAPIKey(key string) Option { return func(c *config) { c.apiKey = key } }

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(u string) Option { return func(c *config) { c.baseURL = u } }

// WithModel sets the model name.
func WithModel(m string) Option { return func(c *config) { c.model = m } }

// WithTimeout bounds every call.
func WithTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// WithTemperature sets sampling temperature.
func WithTemperature(t float64) Option { return func(c *config) { c.temperature = t } }

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option { return func(c *config) { c.httpClient = hc } }

// Client implements service.AnalysisProvider.
type Client struct {
	api         openai.Client
	model       string
	timeout     time.Duration
	temperature float64
}

// NewClient creates the provider. Calls are never retried: a failed
// generation is reported to the caller instead.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &config{
		model:       DefaultModel,
		timeout:     30 * time.Second,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.apiKey == "" {
		return nil, errors.New("api key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.timeout),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}

	metrics.Register()
	return &Client{
		api:         openai.NewClient(reqOpts...),
		model:       cfg.model,
		timeout:     cfg.timeout,
		temperature: cfg.temperature,
	}, nil
}

var _ service.AnalysisProvider = (*Client)(nil)

// Analyze asks the model for a signal and parses the v1 response schema.
func (c *Client) Analyze(ctx context.Context, req service.AnalysisRequest) (*service.Analysis, error) {
	user := prompt.User(prompt.Input{
		Pair:          req.Pair,
		Session:       req.Session,
		MinConfidence: req.MinConfidence,
		MarketContext: req.MarketContext,
	})

	content, err := c.complete(ctx, "analyze", prompt.System, user, true)
	if err != nil {
		return nil, err
	}

	parsed, err := prompt.Parse(content)
	if err != nil {
		metrics.ProviderErrors.WithLabelValues("analyze", "parse").Inc()
		return nil, fmt.Errorf("parse completion: %w", err)
	}

	return &service.Analysis{
		Action:          parsed.Action,
		Confidence:      parsed.Confidence,
		Reasoning:       parsed.Reasoning,
		PatternDetected: parsed.PatternDetected,
		EntryPrice:      parsed.EntryPrice,
		PromptVersion:   prompt.Version,
		Model:           c.model,
	}, nil
}

// Chat returns the model's plain-text reply.
func (c *Client) Chat(ctx context.Context, system, message string) (string, error) {
	content, err := c.complete(ctx, "chat", system, message, false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		metrics.ProviderErrors.WithLabelValues("chat", "empty").Inc()
		return "", prompt.ErrEmpty
	}
	return content, nil
}

func (c *Client) complete(ctx context.Context, op, system, user string, jsonMode bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	metrics.ProviderLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderErrors.WithLabelValues(op, errorReason(ctx, err)).Inc()
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ProviderErrors.WithLabelValues(op, "no_choices").Inc()
		return "", prompt.ErrEmpty
	}
	return resp.Choices[0].Message.Content, nil
}

func errorReason(ctx context.Context, err error) string {
	var apiErr *openai.Error
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	default:
		return "transport"
	}
}
