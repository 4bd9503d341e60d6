// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// DefaultEndpoint is Exa's hosted MCP server.
	DefaultEndpoint = "https://mcp.exa.ai/mcp"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 1

	clientName    = "nutrirag"
	clientVersion = "1.0.0"
)

// Client is a connected MCP session to a search server. The tool list is
// fetched once and cached for the life of the client.
type Client struct {
	endpoint   string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	transport  mcp.Transport
	logger     *slog.Logger

	session *mcp.ClientSession

	mu    sync.Mutex
	tools []*mcp.Tool
}

// Option configures a Client.
type Option func(*Client) error

// WithEndpoint sets the MCP server URL. Default is DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) error {
		c.endpoint = endpoint
		return nil
	}
}

// WithTimeout sets the HTTP timeout. Default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithMaxRetries sets how often the transport reconnects before giving up.
// Default is 1.
func WithMaxRetries(n int) Option {
	return func(c *Client) error {
		c.maxRetries = n
		return nil
	}
}

// WithHTTPClient sets the HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithTransport connects over t instead of streamable HTTP. No API key is
// needed in that case.
func WithTransport(t mcp.Transport) Option {
	return func(c *Client) error {
		c.transport = t
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// Connect opens a session with the search server, authenticating with apiKey.
func Connect(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		endpoint:   DefaultEndpoint,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		logger:     slog.Default().With("component", "websearch"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	transport := c.transport
	if transport == nil {
		if apiKey == "" {
			return nil, ErrAPIKeyRequired
		}
		endpoint, err := withAPIKey(c.endpoint, apiKey)
		if err != nil {
			return nil, err
		}
		hc := c.httpClient
		if hc == nil {
			hc = &http.Client{Timeout: c.timeout}
		}
		transport = &mcp.StreamableClientTransport{
			Endpoint:   endpoint,
			HTTPClient: hc,
			MaxRetries: c.maxRetries,
		}
	}

	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: clientVersion}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to search server: %w", err)
	}
	c.session = session
	c.logger.Debug("connected to search server", "endpoint", c.endpoint)
	return c, nil
}

func withAPIKey(endpoint, apiKey string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("exaApiKey", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ListTools returns the server's tools, fetching them on first use.
func (c *Client) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tools != nil {
		return c.tools, nil
	}
	res, err := c.session.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}
	c.tools = res.Tools
	c.logger.Debug("listed search tools", "count", len(c.tools))
	return c.tools, nil
}

// Call invokes a tool and returns its text content joined by newlines.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", err
	}
	text := contentText(res.Content)
	if res.IsError {
		return "", fmt.Errorf("%w: %s: %s", ErrToolFailed, name, text)
	}
	return text, nil
}

// Close ends the session.
func (c *Client) Close() error {
	return c.session.Close()
}

func contentText(content []mcp.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := item.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
