package smsclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crm-backend/pkg/logger"

	"go.uber.org/zap"
)

// Client talks to the SMS provider's form-encoded HTTP API.
type Client struct {
	baseURL  string
	userID   string
	password string
	senderID string
	client   *http.Client
}

func NewClient(baseURL, userID, password, senderID string) *Client {
	return &Client{
		baseURL:  baseURL,
		userID:   userID,
		password: password,
		senderID: senderID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type providerResponse struct {
	ResponseCode int    `json:"responseCode"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
}

// SendNotificationSMS formats "title: message" and sends it. Returns false
// on any failure; errors stay in the log.
func (c *Client) SendNotificationSMS(ctx context.Context, phone, title, message string) bool {
	if phone == "" {
		logger.L().Warn("no recipient phone number provided for SMS notification")
		return false
	}
	if c.baseURL == "" {
		// Provider not configured; behave like a disabled channel.
		logger.L().Info("sms placeholder", zap.String("to", phone), zap.String("title", title))
		return true
	}

	body := title + ": " + message

	form := url.Values{}
	form.Set("userid", c.userID)
	form.Set("password", c.password)
	form.Set("senderid", c.senderID)
	form.Set("sendMethod", "quick")
	form.Set("msgType", "text")
	form.Set("msg", body)
	form.Set("mobile", phone)
	form.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		logger.L().Warn("sms request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.L().Warn("sms send failed", zap.String("to", phone), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		logger.L().Warn("sms provider returned non-200",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return false
	}

	var pr providerResponse
	if err := json.Unmarshal(raw, &pr); err == nil && pr.Status == "error" {
		logger.L().Warn("sms provider rejected message",
			zap.String("to", phone), zap.String("reason", pr.Reason))
		return false
	}

	logger.L().Info("sms sent", zap.String("to", phone))
	return true
}
