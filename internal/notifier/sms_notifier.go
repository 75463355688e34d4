package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/kevin-vien/web-mobile-tranning/configs"
)

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// AfricasTalkingSMS posts to the Africa's Talking bulk messaging endpoint.
type AfricasTalkingSMS struct {
	cfg    config.AfricaTalkingConfig
	client *http.Client
}

func NewAfricasTalkingSMS(cfg config.AfricaTalkingConfig) *AfricasTalkingSMS {
	return &AfricasTalkingSMS{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *AfricasTalkingSMS) SendSMS(ctx context.Context, to, text string) error {
	data := url.Values{}
	data.Set("username", s.cfg.Username)
	data.Set("to", to)
	data.Set("message", text)
	data.Set("from", s.cfg.SenderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if decodeErr == nil {
			return fmt.Errorf("SMS API returned status %d: %s", resp.StatusCode, smsResp.SMSMessageData.Message)
		}
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode SMS response: %w", decodeErr)
	}
	return nil
}
