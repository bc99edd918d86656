// Package hospitable is a minimal client for the Hospitable public API v2,
// covering what the export needs: listing properties and reading one page of
// reservations with financials for a date range.
package hospitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://public.api.hospitable.com/v2"

// pageSize is the largest page the reservations endpoint serves.
const pageSize = 100

// ClientConfig represents the configuration for the Hospitable API client.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration // Default: 30 seconds
	Logger  zerolog.Logger
}

// Client is a Hospitable API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        zerolog.Logger
}

// ReservationQuery selects the reservations of one property.
type ReservationQuery struct {
	PropertyID string
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
	DateQuery  string // optional, e.g. "checkin" to filter on the check-in window
}

// NewClient creates a new Hospitable API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      config.Token,
		log:        config.Logger,
	}
}

// ListProperties returns the properties visible to the token.
func (c *Client) ListProperties(ctx context.Context) ([]Property, error) {
	const op = "ListProperties"

	body, err := c.get(ctx, "/properties", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp PropertiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: failed to decode response: %v", op, ErrFetchFailed, err)
	}

	c.log.Debug().Int("properties", len(resp.Data)).Msg("Properties listed")
	return resp.Data, nil
}

// ResolvePropertyID finds the id of the property with the given name.
// When several properties share the name the last one listed wins.
func (c *Client) ResolvePropertyID(ctx context.Context, name string) (string, error) {
	const op = "ResolvePropertyID"

	properties, err := c.ListProperties(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	for _, p := range properties {
		if p.Name == name {
			id = p.ID
		}
	}
	if id == "" {
		return "", fmt.Errorf("%s: %w: %q", op, ErrPropertyNotFound, name)
	}

	c.log.Info().Str("property", name).Str("property_id", id).Msg("Property resolved")
	return id, nil
}

// FetchReservations reads a single page of reservations with financials.
// It returns the decoded envelope and the raw body for debug dumps.
func (c *Client) FetchReservations(ctx context.Context, q ReservationQuery) (*ReservationsResponse, []byte, error) {
	const op = "FetchReservations"

	params := url.Values{}
	params.Set("per_page", fmt.Sprintf("%d", pageSize))
	params.Add("properties[]", q.PropertyID)
	params.Set("start_date", q.StartDate)
	params.Set("end_date", q.EndDate)
	params.Set("include", "financials")
	if q.DateQuery != "" {
		params.Set("date_query", q.DateQuery)
	}

	body, err := c.get(ctx, "/reservations", params)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp ReservationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("%s: %w: failed to decode response: %v", op, ErrFetchFailed, err)
	}

	c.log.Info().
		Str("property_id", q.PropertyID).
		Str("start_date", q.StartDate).
		Str("end_date", q.EndDate).
		Int("reservations", len(resp.Data)).
		Msg("Reservations fetched")

	return &resp, body, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	c.log.Debug().Str("url", endpoint).Msg("Calling Hospitable API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to make request: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, body)
	}

	return body, nil
}

// parseError parses an error response from the Hospitable API.
func parseError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Body: string(body)}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Message = errResp.Message
		if apiErr.Message == "" {
			apiErr.Message = errResp.Reason
		}
	}
	return apiErr
}

// DumpDebug writes body, pretty-printed, to <dir>/<name>.json and returns the path.
func DumpDebug(dir, name string, body []byte) (string, error) {
	const op = "DumpDebug"

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "    "); err != nil {
		return "", fmt.Errorf("%s: response is not valid JSON: %w", op, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: failed to create debug directory: %w", op, err)
	}

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, pretty.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%s: failed to write debug file: %w", op, err)
	}
	return path, nil
}
