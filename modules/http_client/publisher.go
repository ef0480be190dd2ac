package http_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/smartnodego/internal/component"
	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// Publisher sends the readings of another component to an HTTP endpoint.
type Publisher struct {
	client *http.Client
	url    string
	method string
	source component.Reader
	node   string

	sent atomic.Int64
}

// payload is the JSON document posted for every reading.
type payload struct {
	Node    string         `json:"node,omitempty"`
	Time    time.Time      `json:"time"`
	Reading map[string]any `json:"reading"`
}

// NewPublisher builds a Publisher from keyword arguments: url (required),
// source (required, a component producing readings), client (optional, a
// component built by Client), method (default POST) and node (an identifier
// sent along with every reading).
func NewPublisher(_ context.Context, args component.Args) (any, error) {
	rawURL, err := args.String(-1, "url", "")
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("argument \"url\" must be an absolute http(s) URL, got %q", rawURL)
	}

	rawSource, _ := args.Param(-1, "source")
	source, ok := rawSource.(component.Reader)
	if !ok {
		return nil, fmt.Errorf("source %v is not a registered component that produces readings", rawSource)
	}

	client := newHTTPClient(DefaultTimeout)
	if rawClient, ok := args.Param(-1, "client"); ok && rawClient != nil {
		c, ok := rawClient.(*http.Client)
		if !ok {
			return nil, fmt.Errorf("client %v is not a registered HTTP client", rawClient)
		}
		client = c
	}

	method, err := args.String(-1, "method", http.MethodPost)
	if err != nil {
		return nil, err
	}
	method = strings.ToUpper(method)
	if method != http.MethodPost && method != http.MethodPut {
		return nil, fmt.Errorf("method must be POST or PUT, got %s", method)
	}

	node, err := args.String(-1, "node", "")
	if err != nil {
		return nil, err
	}

	return &Publisher{client: client, url: u.String(), method: method, source: source, node: node}, nil
}

// Publish reads the source and sends the reading as JSON.
func (p *Publisher) Publish(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	reading, err := p.source.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	body, err := json.Marshal(payload{Node: p.node, Time: time.Now().UTC(), Reading: reading})
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Making HTTP request", "method", p.method, "url", p.url)
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected response status %s", resp.Status)
	}

	n := p.sent.Add(1)
	logger.Debug("Received HTTP response", "status", resp.Status, "sent", n)
	return nil
}

// Sent returns how many readings were delivered successfully.
func (p *Publisher) Sent() int64 {
	return p.sent.Load()
}

// Close releases idle connections of the underlying client.
func (p *Publisher) Close() {
	p.client.CloseIdleConnections()
}
