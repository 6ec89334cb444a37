package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ballsdex/merchant-service/internal/domain"
)

// APIClient handles communication with the merchant service API
type APIClient struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiKey string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		APIKey: apiKey,
	}
}

// RotationView is the merchant offering as returned by the API
type RotationView struct {
	Available bool                     `json:"available"`
	Rotation  *domain.MerchantRotation `json:"rotation,omitempty"`
	Entries   []domain.RotationEntry   `json:"entries,omitempty"`
}

// BuyResult is the API response for a completed purchase
type BuyResult struct {
	Message    string              `json:"message"`
	Instance   domain.BallInstance `json:"instance"`
	ItemLabel  string              `json:"item_label"`
	PricePaid  int64               `json:"price_paid"`
	NewBalance int64               `json:"new_balance"`
}

// APIError carries the error payload returned by the service. ReadyAt is
// set only for cooldown rejections.
type APIError struct {
	Status  int
	Message string
	ReadyAt string
}

func (e *APIError) Error() string {
	return e.Message
}

// doRequest performs an HTTP request with retry logic on server errors
func (c *APIClient) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var reqBody []byte
	var err error

	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	url := fmt.Sprintf("%s%s", c.BaseURL, path)

	maxRetries := 3
	retryDelay := 500 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(time.Now().UnixNano()%100) * time.Millisecond
			delay := retryDelay*time.Duration(1<<uint(attempt-1)) + jitter
			time.Sleep(delay)
			slog.Info("Retrying API request", "attempt", attempt, "path", path, "delay", delay)
		}

		req, err := http.NewRequest(method, url, bytes.NewBuffer(reqBody))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("X-API-Key", c.APIKey)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = err
			slog.Warn("API request failed", "error", err, "attempt", attempt)
			continue
		}

		// Success or non-retryable error
		if resp.StatusCode < 500 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		slog.Warn("Server error, will retry", "status", resp.StatusCode, "attempt", attempt)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// decodeAPIError reads the error payload from a non-OK response
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var errResp struct {
		Error   string `json:"error"`
		ReadyAt string `json:"ready_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
		apiErr.ReadyAt = errResp.ReadyAt
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("API returned status: %d", resp.StatusCode)
	return apiErr
}

// GetRotation retrieves the current merchant offering
func (c *APIClient) GetRotation() (*RotationView, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/merchant/rotation", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var view RotationView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode rotation: %w", err)
	}

	return &view, nil
}

// Buy purchases a rotation entry for the given player
func (c *APIClient) Buy(playerID string, entryID int64, serverID string) (*BuyResult, error) {
	req := map[string]interface{}{
		"player_id": playerID,
		"entry_id":  entryID,
		"server_id": serverID,
	}

	resp, err := c.doRequest(http.MethodPost, "/api/v1/merchant/buy", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var result BuyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
