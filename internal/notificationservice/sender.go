package notificationservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RelaySender posts rendered emails to an HTTP relay endpoint. A short client
// timeout keeps a slow relay from holding up the dispatch goroutine.
type RelaySender struct {
	url    string
	client *http.Client
}

// NewRelaySender returns a RelaySender for the given endpoint.
func NewRelaySender(url string, timeout time.Duration) *RelaySender {
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &RelaySender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type relayPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send posts the message to the relay.
func (s *RelaySender) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(relayPayload{To: to, Subject: subject, Body: body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email relay returned status %d", resp.StatusCode)
	}

	return nil
}
