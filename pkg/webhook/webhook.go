package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReplyPayload is the body forwarded to the AI automation workflow when a
// user replies in a conversation.
type ReplyPayload struct {
	UserID     string  `json:"userId"`
	ContactID  string  `json:"contactId"`
	EstimateID *string `json:"estimateId,omitempty"`
	Message    string  `json:"message"`
}

// Client posts user replies to the configured n8n webhook URL.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether a webhook URL is set. When it is not, replies
// are saved without triggering an AI response.
func (c *Client) Configured() bool {
	return c.url != ""
}

func (c *Client) ForwardReply(ctx context.Context, p ReplyPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal reply payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post reply webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("reply webhook returned status %d", resp.StatusCode)
	}
	return nil
}
