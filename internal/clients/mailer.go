package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// SendResult is the mailer's acknowledgement of a dispatched email.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// MailerClient talks to the email relay. Transport and templating live on
// the relay side; the pipeline only hands over addressed content.
type MailerClient struct {
	baseURL string
	client  *http.Client
}

func NewMailerClient(baseURL string, timeout time.Duration) *MailerClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MailerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *MailerClient) Send(ctx context.Context, to, subject string, kind notification.Type, content any) (*SendResult, error) {
	body, err := json.Marshal(sendRequest{
		To:      to,
		Subject: subject,
		Type:    string(kind),
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("mailer returned %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode mailer response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("mailer rejected message for %s", to)
	}
	return &result, nil
}
