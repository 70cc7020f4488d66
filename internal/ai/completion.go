package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"modular-rag-service/internal/logger"
	"modular-rag-service/internal/telemetry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// CompletionClient calls the Gemini generateContent REST endpoint. Calls go
// through a rate limiter and a circuit breaker, with bounded retries behind
// the breaker; once it opens, retries stop immediately.
type CompletionClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	metrics    *telemetry.Metrics
	maxRetries int
}

// NewCompletionClient creates a completion client. rpm is the request budget
// per minute; the limiter keeps a small margin under it.
func NewCompletionClient(apiKey, apiURL string, rpm int, metrics *telemetry.Metrics) *CompletionClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiCompletion",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	if rpm <= 0 {
		rpm = 10
	}

	return &CompletionClient{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		breaker:    breaker,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)*0.9/60.0), 2),
		metrics:    metrics,
		maxRetries: 2,
	}
}

// Complete sends the prompt and returns the raw model text.
func (cc *CompletionClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	tracer := otel.Tracer("completion-client")
	ctx, span := tracer.Start(ctx, "gemini.complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.Int("gemini.max_tokens", maxTokens),
		attribute.Float64("gemini.temperature", temperature),
	)

	if err := cc.limiter.Wait(ctx); err != nil {
		return "", err
	}

	request := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= cc.maxRetries; attempt++ {
		out, err := cc.breaker.Execute(func() (interface{}, error) {
			return cc.makeRequest(ctx, request)
		})
		if err == nil {
			if cc.metrics != nil {
				cc.metrics.CompletionDuration.Record(ctx, time.Since(start).Seconds())
			}
			return out.(string), nil
		}

		lastErr = err
		if err == gobreaker.ErrOpenState || ctx.Err() != nil {
			break
		}
		if attempt < cc.maxRetries {
			time.Sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	span.RecordError(lastErr)
	return "", fmt.Errorf("completion failed after %d attempts: %w", cc.maxRetries+1, lastErr)
}

func (cc *CompletionClient) makeRequest(ctx context.Context, request generateRequest) (string, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cc.apiURL+"?key="+cc.apiKey, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cc.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %v", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s (code: %d)", response.Error.Message, response.Error.Code)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
