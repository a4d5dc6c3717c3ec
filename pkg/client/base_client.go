package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

type BaseClient struct {
	name           string
	client         HTTPClient
	logger         *zap.Logger
	circuitBreaker *gobreaker.CircuitBreaker
	observe        func(client string, err error)
}

type ClientConfig struct {
	// Timeout of zero leaves requests unbounded.
	Timeout        time.Duration
	Threshold      int
	BreakerTimeout time.Duration
	// Observe, when set, is called once per request with its outcome.
	Observe func(client string, err error)
	// HTTPClient overrides the default http.Client.
	HTTPClient HTTPClient
}

func NewBaseClient(name string, config ClientConfig, logger *zap.Logger) *BaseClient {
	var httpClient HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}
	if config.HTTPClient != nil {
		httpClient = config.HTTPClient
	}

	threshold := config.Threshold
	if threshold <= 0 {
		threshold = 3
	}

	// Circuit breaker settings
	breakerSettings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(threshold) && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// A rejected lookup is an answer, not an outage. Neither is a
			// caller cancelling its own request.
			if se, ok := err.(*StatusError); ok {
				return se.Status < 500
			}
			if errors.Is(err, context.Canceled) {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				zap.String("client", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BaseClient{
		name:           name,
		client:         httpClient,
		logger:         logger,
		circuitBreaker: gobreaker.NewCircuitBreaker(breakerSettings),
		observe:        config.Observe,
	}
}

func (c *BaseClient) Name() string {
	return c.name
}

func (c *BaseClient) BreakerState() string {
	return c.circuitBreaker.State().String()
}

// HTTPClient returns an http.Client whose requests all pass through this
// client's circuit breaker.
func (c *BaseClient) HTTPClient() *http.Client {
	return &http.Client{Transport: c}
}

// Get issues a single GET through the circuit breaker and returns the body of
// a 2xx response.
func (c *BaseClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	_, data, err := c.execute(req)
	return data, err
}

// RoundTrip sends req through the circuit breaker. Non-2xx responses are
// returned as *StatusError.
func (c *BaseClient) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, data, err := c.execute(req)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

type reply struct {
	resp *http.Response
	data []byte
}

func (c *BaseClient) execute(req *http.Request) (*http.Response, []byte, error) {
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.do(req)
	})

	if c.observe != nil {
		c.observe(c.name, err)
	}

	if err != nil {
		return nil, nil, err
	}

	r := result.(*reply)
	return r.resp, r.data, nil
}

func (c *BaseClient) do(req *http.Request) (*reply, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("HTTP request failed",
			zap.String("client", c.name),
			zap.String("method", req.Method),
			zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Upstream returned error status",
			zap.String("client", c.name),
			zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Status: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	c.logger.Debug("Request successful",
		zap.String("client", c.name),
		zap.String("method", req.Method),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_size", len(data)),
		zap.Duration("duration", time.Since(start)))

	return &reply{resp: resp, data: data}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
