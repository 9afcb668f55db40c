// Package notify delivers transactional email through the EmailJS HTTP API.
// Delivery is best-effort: callers persist their own state before notifying
// and treat failures as log-worthy, not fatal.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hackerforce/platform/internal/boot"
)

const defaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

type Client struct {
	serviceID  string
	templateID string
	publicKey  string
	endpoint   string
	httpClient *http.Client
}

func New(config *boot.Config) *Client {
	return &Client{
		serviceID:  config.EmailJS.ServiceID,
		templateID: config.EmailJS.TemplateID,
		publicKey:  config.EmailJS.PublicKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *Client) send(ctx context.Context, params map[string]string) error {
	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.serviceID,
		TemplateID:     c.templateID,
		UserID:         c.publicKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("marshalling email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) SendPasswordReset(ctx context.Context, email, username, resetLink string) error {
	return c.send(ctx, map[string]string{
		"to_email":   email,
		"to_name":    username,
		"reset_link": resetLink,
	})
}

func (c *Client) SendSubscriptionCancelled(ctx context.Context, email string) error {
	return c.send(ctx, map[string]string{
		"to_email": email,
	})
}
