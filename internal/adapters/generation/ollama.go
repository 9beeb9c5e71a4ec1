// Package generation talks to an Ollama chat backend through the official
// Ollama API client.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/okian/sppb/pkg/logger"
)

// Client defaults.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultTimeout = 120 * time.Second

	roleUser = "user"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the backend address.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithTimeout bounds one generation call end to end.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient overrides the HTTP client the API client uses.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client performs single-turn, non-streaming chat calls.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  logger.Logger
	api     *api.Client
	initErr error
}

// New creates a chat client. An unparsable base URL is reported by every
// Generate call.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		c.initErr = fmt.Errorf("%w: base url %q: %w", ErrBackend, c.baseURL, err)
		return c
	}
	c.api = api.NewClient(base, c.http)
	return c
}

// Generate sends prompt as one user message to model and returns the reply
// content verbatim, including an empty reply. There is no retry.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.initErr != nil {
		return "", c.initErr
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: []api.Message{{Role: roleUser, Content: prompt}},
		Stream:   &stream,
	}

	// Non-streaming: the backend answers with one complete message, but
	// accumulate in case it splits the reply anyway.
	var content strings.Builder
	start := time.Now()
	err := c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var se api.StatusError
		if errors.As(err, &se) {
			return "", fmt.Errorf("%w: status %d: %s", ErrBackend, se.StatusCode, se.ErrorMessage)
		}
		return "", fmt.Errorf("%w: chat request to %s: %w", ErrBackend, c.baseURL, err)
	}

	c.logger.Debug(ctx, "chat completed",
		logger.String("model", model),
		logger.Duration("elapsed", time.Since(start)),
		logger.Int("chars", content.Len()),
	)
	return content.String(), nil
}
