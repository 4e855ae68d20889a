// Package webhook posts match outcomes to an HTTP endpoint, optionally
// authenticated with OAuth2 client credentials.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/ridematch/auth"
	"github.com/kilianp07/ridematch/core/events"
	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/publish"
)

// Config locates the endpoint.
type Config struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Timeout time.Duration     `json:"timeout"`
	OAuth   auth.Conf         `json:"oauth"`
}

// Publisher posts one JSON message per completed match.
type Publisher struct {
	url     string
	headers map[string]string
	client  *http.Client
	creds   *auth.ClientCred
}

// NewPublisher creates a publisher for cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook: url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	p := &Publisher{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.OAuth.Enabled() {
		p.creds = auth.NewClientCred(cfg.OAuth)
	}
	return p, nil
}

// Name identifies the backend.
func (p *Publisher) Name() string { return "webhook" }

// Publish posts the match message. A 401 answer triggers one token refresh
// and retry.
func (p *Publisher) Publish(ctx context.Context, ev events.MatchCompleted) error {
	body, err := json.Marshal(publish.NewMessage(ev))
	if err != nil {
		return err
	}
	status, err := p.post(ctx, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && p.creds != nil {
		if _, err := p.creds.ForceRefresh(ctx); err != nil {
			return err
		}
		if status, err = p.post(ctx, body); err != nil {
			return err
		}
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("webhook: %s answered %d", p.url, status)
	}
	return nil
}

func (p *Publisher) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	if p.creds != nil {
		if err := p.creds.SetAuthHeader(ctx, req); err != nil {
			return 0, err
		}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Close releases idle connections.
func (p *Publisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func init() {
	_ = publish.Register("webhook", func(conf map[string]any) (publish.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}
