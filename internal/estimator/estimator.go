// Package estimator asks an OpenAI-compatible chat model for a quick
// probability estimate on a market question. The prompt is deliberately
// tiny and the reply is expected to be a bare number; anything that cannot
// be parsed degrades to a neutral estimate rather than failing the cycle.
package estimator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-autopilot/pkg/types"
)

// successConfidence is the fixed confidence attached to a parsed estimate;
// the minimal prompt gives the model no room to express its own.
const successConfidence = 0.7

// Estimator produces probability estimates for market questions.
type Estimator interface {
	Estimate(ctx context.Context, m *types.Market, newsSummary string) (types.Estimate, error)
}

// Config holds the chat client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// Client calls an OpenAI-compatible completion API.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	log         *zap.Logger
}

// New creates a client from config.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("estimator: API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 20
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		openaiCfg.BaseURL = baseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(openaiCfg),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		log:         cfg.Logger,
	}, nil
}

// Estimate asks for a single probability number for the market question.
// Errors and unparsable replies both return the neutral fallback along
// with the error, so callers can proceed either way.
func (c *Client) Estimate(ctx context.Context, m *types.Market, newsSummary string) (types.Estimate, error) {
	price := 0.5
	if p, ok := m.YesPrice(); ok {
		price = p
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(m.Question, newsSummary, price),
			},
		},
	})
	RequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		RequestsTotal.WithLabelValues("error").Inc()
		c.log.Warn("estimator-request-failed",
			zap.String("market-id", m.ID),
			zap.Error(err))
		return types.NeutralEstimate(price), fmt.Errorf("estimator: %w", err)
	}
	if len(resp.Choices) == 0 {
		RequestsTotal.WithLabelValues("empty").Inc()
		return types.NeutralEstimate(price), fmt.Errorf("estimator: empty response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	probability, ok := ParseProbability(text)
	if !ok {
		RequestsTotal.WithLabelValues("unparsable").Inc()
		c.log.Warn("estimator-unparsable-reply",
			zap.String("market-id", m.ID),
			zap.String("reply", text))
		return types.NeutralEstimate(price), fmt.Errorf("estimator: unparsable reply %q", text)
	}

	RequestsTotal.WithLabelValues("ok").Inc()
	c.log.Debug("estimator-reply",
		zap.String("market-id", m.ID),
		zap.Float64("probability", probability),
		zap.Float64("market-price", price))

	return types.Estimate{Probability: probability, Confidence: successConfidence}, nil
}

// buildPrompt keeps the prompt as short as possible: question, optional
// news, current market price, and a request for a bare number.
func buildPrompt(question, news string, price float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	if news != "" {
		if len(news) > 200 {
			news = news[:200]
		}
		fmt.Fprintf(&b, "News: %s\n", news)
	}
	fmt.Fprintf(&b, "Market: %.0f%%\n", price*100)
	b.WriteString("\nYour probability estimate (0-100): ")
	return b.String()
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseProbability extracts the first number from a model reply and maps
// it into [0,1]. Values above 1 are read as percentages.
func ParseProbability(text string) (float64, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	num, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	if num > 1 {
		if num > 100 {
			num = 100
		}
		return num / 100, true
	}
	return num, true
}
