// Package sms is the delivery channel for emergency alerts. The
// lifecycle manager treats a channel error and a non-sent outcome
// identically: both count as one failed delivery attempt.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
)

// Result is the outcome of one delivery attempt.
type Result string

const (
	ResultSent   Result = "sent"
	ResultFailed Result = "failed"
)

// Channel attempts delivery of a message to a destination number.
type Channel interface {
	// Available reports whether sending is currently possible at
	// all, independent of any particular message.
	Available(ctx context.Context) bool

	// Send attempts one delivery of body to the destination number.
	Send(ctx context.Context, to, body string) (Result, error)
}

// GatewayClient handles communication with an HTTP SMS gateway
type GatewayClient struct {
	baseURL    string
	apiKey     string
	senderID   string
	httpClient *http.Client
}

// NewGatewayClient creates a new SMS gateway client
func NewGatewayClient(baseURL, apiKey, senderID string) *GatewayClient {
	return &GatewayClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type statusResponse struct {
	Available bool `json:"available"`
}

// Available probes the gateway status endpoint.
func (c *GatewayClient) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/status", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("SMS gateway status probe failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("SMS gateway status probe returned status %d", resp.StatusCode)
		return false
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		log.WithError(err).Warn("Failed to decode SMS gateway status response")
		return false
	}
	return status.Available
}

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

type sendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// Send posts one message to the gateway and maps its reply onto a
// delivery Result.
func (c *GatewayClient) Send(ctx context.Context, to, body string) (Result, error) {
	requestBody, err := json.Marshal(sendRequest{
		To:   to,
		From: c.senderID,
		Body: body,
	})
	if err != nil {
		return ResultFailed, fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(requestBody))
	if err != nil {
		return ResultFailed, fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Infof("Sending SMS to %s via gateway, body size %d bytes", to, len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ResultFailed, fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ResultFailed, fmt.Errorf("SMS gateway returned status %d", resp.StatusCode)
	}

	var sendResp sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return ResultFailed, fmt.Errorf("failed to decode SMS gateway response: %w", err)
	}

	if sendResp.Status != string(ResultSent) {
		log.Warnf("SMS gateway reported status %q for message to %s", sendResp.Status, to)
		return ResultFailed, nil
	}
	log.Infof("SMS to %s accepted by gateway, message id %s", to, sendResp.MessageID)
	return ResultSent, nil
}
