package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// HTTPConfig contains configuration for the HTTP enrichment client.
type HTTPConfig struct {
	// BaseURL is the enrichment service endpoint, e.g. "http://localhost:8090".
	// The client posts to BaseURL + "/v1/extract".
	BaseURL string `yaml:"base_url"`

	// APIKey is sent as a bearer token when non-empty.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each call including retries. Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is how many times a transient failure is retried. Default: 2
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns sizes the connection pool. Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// DefaultHTTPConfig returns the default HTTP client configuration.
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		MaxIdleConns: 10,
	}
}

// ServiceError reports a failed enrichment call.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("enrichment service error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPService calls an external extraction service over HTTP. Transient
// failures (network errors, 5xx) are retried with exponential backoff;
// client errors are not.
type HTTPService struct {
	config *HTTPConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPService creates an enrichment client with connection pooling.
func NewHTTPService(config *HTTPConfig) (*HTTPService, error) {
	if config == nil || config.BaseURL == "" {
		return nil, fmt.Errorf("enrichment service requires a base URL")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPService{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "enrich.http"),
	}, nil
}

// Enrich posts the request to the extraction endpoint and decodes the result.
func (s *HTTPService) Enrich(ctx context.Context, req *Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enrichment request: %w", err)
	}

	url := s.config.BaseURL + "/v1/extract"
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 250 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create enrichment request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if s.config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
		}

		resp, err := s.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			s.logger.Warn("enrichment request failed, will retry",
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read enrichment response: %w", readErr)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			var result Result
			if err := json.Unmarshal(respBody, &result); err != nil {
				return nil, fmt.Errorf("failed to decode enrichment response: %w", err)
			}
			if result.Confidence < 0 {
				result.Confidence = 0
			}
			if result.Confidence > 1 {
				result.Confidence = 1
			}
			return &result, nil

		case resp.StatusCode >= 500:
			lastErr = &ServiceError{StatusCode: resp.StatusCode, Message: string(respBody)}
			s.logger.Warn("enrichment service returned server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)

		default:
			// 4xx is not retryable.
			return nil, &ServiceError{StatusCode: resp.StatusCode, Message: string(respBody)}
		}
	}

	return nil, lastErr
}

// Close releases pooled connections.
func (s *HTTPService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
