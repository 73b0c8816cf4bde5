package handshake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AccountsClient calls the accounts service over HTTP to verify
// credentials.
type AccountsClient struct {
	baseURL string
	client  *http.Client
}

// NewAccountsClient creates a client for the accounts service at baseURL.
func NewAccountsClient(baseURL string, timeout time.Duration) *AccountsClient {
	return &AccountsClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// AuthResult is the accounts service's verdict on a credential pair.
type AuthResult struct {
	OK     bool
	Reason string
}

type authRequest struct {
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type authResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// AuthenticateBasic verifies credentials against the accounts service.
// A rejected credential pair is a successful call with OK false; an error
// means the accounts service could not give a verdict at all.
func (c *AccountsClient) AuthenticateBasic(ctx context.Context, emailAddress, password string) (AuthResult, error) {
	body, err := json.Marshal(authRequest{
		EmailAddress: emailAddress,
		Password:     password,
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("marshal auth request: %w", err)
	}

	url := c.baseURL + "/basic_auth/authenticate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return AuthResult{}, fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return AuthResult{}, fmt.Errorf("call accounts service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AuthResult{}, fmt.Errorf("accounts service returned %s", resp.Status)
	}

	var verdict authResponse
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return AuthResult{}, fmt.Errorf("decode accounts response: %w", err)
	}

	return AuthResult{
		OK:     verdict.Status == 1,
		Reason: verdict.Error,
	}, nil
}
