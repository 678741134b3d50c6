package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/k12fleet/assetdesk/internal/logger"
	"github.com/k12fleet/assetdesk/internal/metrics"
)

// Test hooks to make backoff observable without real sleeps.
var (
	sleepFunc   = time.Sleep
	backoffBase = time.Second
)

// DeviceDescriptor is one equipment item currently assigned to an identity.
type DeviceDescriptor struct {
	AssetID      string `json:"asset_id"`
	AssetTag     string `json:"asset_tag"`
	SerialNumber string `json:"serial_number"`
	DeviceType   string `json:"device_type"`
}

// Client talks to the district's asset directory (ticketing/CMDB) REST API.
// No caching: assignment can change between sessions, so every verification
// queries fresh state.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxAttempts int
}

// NewClient creates a directory client for the given base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxAttempts: 3,
	}
}

type userEnvelope struct {
	Users []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"users"`
}

type assetEnvelope struct {
	Assets []struct {
		ID           string `json:"id"`
		AssetTag     string `json:"asset_tag"`
		SerialNumber string `json:"serial_number"`
		Type         string `json:"type"`
	} `json:"assets"`
}

// ResolveIdentity looks up the external identity for a display name.
func (c *Client) ResolveIdentity(ctx context.Context, name string) (string, error) {
	path := "/api/v1/users?search=" + url.QueryEscape(name)
	body, status, err := c.get(ctx, "resolve identity", path)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", &NotFoundError{Query: name}
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("resolve identity: unexpected status %d", status)
	}

	var env userEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("resolve identity: malformed response: %w", err)
	}
	if len(env.Users) == 0 {
		return "", &NotFoundError{Query: name}
	}

	return env.Users[0].ID, nil
}

// FetchAssignedDevices returns the equipment currently assigned to an external
// identity. An empty list is a valid result, not an error.
func (c *Client) FetchAssignedDevices(ctx context.Context, externalID string) ([]DeviceDescriptor, error) {
	path := "/api/v1/assets?assigned_to=" + url.QueryEscape(externalID)
	body, status, err := c.get(ctx, "fetch assigned devices", path)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &NotFoundError{Query: externalID}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch assigned devices: unexpected status %d", status)
	}

	var env assetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("fetch assigned devices: malformed response: %w", err)
	}

	devices := make([]DeviceDescriptor, 0, len(env.Assets))
	for _, a := range env.Assets {
		devices = append(devices, DeviceDescriptor{
			AssetID:      a.ID,
			AssetTag:     a.AssetTag,
			SerialNumber: a.SerialNumber,
			DeviceType:   a.Type,
		})
	}

	return devices, nil
}

// Ping probes the directory service root. Used by the ops health check only.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/ping", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("directory ping: status %d", resp.StatusCode)
	}
	return nil
}

// get performs a GET with bounded retry: up to maxAttempts with exponential
// backoff (1s, 2s, 4s) on transport errors and 5xx responses. Non-transient
// outcomes return immediately.
func (c *Client) get(ctx context.Context, op, path string) ([]byte, int, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffBase << (attempt - 2)
			logger.WithFields(map[string]interface{}{
				"op":      op,
				"attempt": attempt,
				"delay":   delay.String(),
			}).Warn("retrying directory request")
			metrics.IncDirectoryRetry()
			sleepFunc(delay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: build request: %w", op, err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport failure (timeout, refused, reset): transient.
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return body, resp.StatusCode, nil
	}

	metrics.IncDirectoryFailure()
	return nil, 0, &ServiceUnavailableError{Op: op, Attempts: c.maxAttempts, Err: lastErr}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
