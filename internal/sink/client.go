package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"signal-dashboard-go/internal/config"
	"signal-dashboard-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientInterface defines the interface for the persistence/notification
// sink client.
type ClientInterface interface {
	PushSignal(ctx context.Context, payload models.Payload) error
	FetchHistory(ctx context.Context) ([]models.Signal, error)
}

// Client talks to the external sink over HTTP.
// It implements ClientInterface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new sink client.
func NewClient(cfg *config.Sink, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// PushSignal delivers one normalized payload to the sink. Delivery is
// best-effort: there is no retry, and the caller is expected to only log
// the returned error.
func (c *Client) PushSignal(ctx context.Context, payload models.Payload) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("")
	if err != nil {
		return fmt.Errorf("failed to push signal: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sink rejected signal with status %s: %s", resp.Status(), resp.String())
	}

	c.logger.Debug("Forwarded signal to sink",
		zap.String("ticker", payload.Ticker),
		zap.String("id", payload.ID),
	)
	return nil
}

// historyEnvelope is the sink's wrapped history response.
type historyEnvelope struct {
	Status string          `json:"status"`
	Data   []models.Signal `json:"data"`
}

// FetchHistory pulls the stored signal history from the sink. The sink
// returns either {"status":"success","data":[...]} or a bare list; both
// shapes are accepted. Rows are expected newest first; a sink that appends
// oldest-first must reverse before responding, since history truncation
// keeps the head of the list. Transient failures are retried a
// bounded number of times since this is a one-shot startup call.
func (c *Client) FetchHistory(ctx context.Context) ([]models.Signal, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	body := resp.Body()

	var envelope historyEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Status != "" {
		if envelope.Status != "success" {
			return nil, fmt.Errorf("sink returned status %q", envelope.Status)
		}
		return envelope.Data, nil
	}

	var bare []models.Signal
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, fmt.Errorf("malformed history payload: %w", err)
	}
	return bare, nil
}

// doRequest executes a request with rate limiting and retry on transient
// failures.
func (c *Client) doRequest(ctx context.Context, method, url string) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = c.client.R().SetContext(ctx).Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
