package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type emailPayload struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// EmailNotifier posts {subject, message} to a mail relay endpoint.
// Failures are returned to the caller and never retried.
type EmailNotifier struct {
	url    string
	client *http.Client
}

func NewEmailNotifier(url string, timeout time.Duration) *EmailNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EmailNotifier{url: url, client: &http.Client{Timeout: timeout}}
}

func (n *EmailNotifier) Notify(ctx context.Context, subject, message string) error {
	body, err := json.Marshal(emailPayload{Subject: subject, Message: message})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send email: unexpected status %d", resp.StatusCode)
	}
	return nil
}
