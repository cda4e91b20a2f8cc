// Package push sends device notifications through a OneSignal-style REST API.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/autodealer/showroom/internal/core/ports"
)

const defaultTimeout = 5 * time.Second

// Config holds the push API credentials.
type Config struct {
	BaseURL string
	AppID   string
	APIKey  string
	Timeout time.Duration
}

// Client implements ports.PushSender.
type Client struct {
	baseURL string
	appID   string
	http    *http.Client
}

// authTransport adds the API key to every outgoing request.
type authTransport struct {
	base       http.RoundTripper
	authHeader string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", t.authHeader)
	return t.base.RoundTrip(req)
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		http: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				base:       http.DefaultTransport,
				authHeader: "Basic " + cfg.APIKey,
			},
		},
	}
}

type notificationRequest struct {
	AppID          string            `json:"app_id"`
	ExternalUserID []string          `json:"include_external_user_ids"`
	Headings       map[string]string `json:"headings"`
	Contents       map[string]string `json:"contents"`
	URL            string            `json:"url,omitempty"`
}

// Send targets every device registered under the user's external id.
func (c *Client) Send(ctx context.Context, m ports.PushMessage) error {
	body := notificationRequest{
		AppID:          c.appID,
		ExternalUserID: []string{m.UserID},
		Headings:       map[string]string{"en": m.Title},
		Contents:       map[string]string{"en": m.Body},
	}
	if m.URL != nil {
		body.URL = *m.URL
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("push marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
