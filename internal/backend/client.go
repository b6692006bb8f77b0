package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homecyclehelp/booking-client/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Config controls how the backend client behaves.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the four booking API endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient constructs a backend API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// GetInterventionTypes lists the bookable intervention types.
func (c *Client) GetInterventionTypes(ctx context.Context) ([]InterventionType, error) {
	var types []InterventionType
	if err := c.doJSON(ctx, http.MethodGet, "/types-intervention", "", nil, &types); err != nil {
		return nil, fmt.Errorf("get intervention types: %w", err)
	}
	return types, nil
}

// CheckCoverage submits a coordinate to the zone lookup.
//
// A transport or protocol failure is reported as ErrCoverageCheck; a clean
// negative answer is a nil error with Covered=false. A covered answer that
// lacks a provider id is fail-closed to not covered.
func (c *Client) CheckCoverage(ctx context.Context, latitude, longitude float64) (CoverageResult, error) {
	body := map[string]float64{"latitude": latitude, "longitude": longitude}

	var result CoverageResult
	if err := c.doJSON(ctx, http.MethodPost, "/zones/check", "", body, &result); err != nil {
		return CoverageResult{}, fmt.Errorf("%w: %v", ErrCoverageCheck, err)
	}

	if result.Covered && result.ProviderID <= 0 {
		c.logger.Warn("coverage response claims covered but has no provider id, treating as not covered")
		return CoverageResult{}, nil
	}
	return result, nil
}

// GetAvailableSlots lists open slots for a provider and intervention type.
// An empty list is a valid answer. The session token, when present, is sent
// as a bearer credential.
func (c *Client) GetAvailableSlots(ctx context.Context, providerID, typeID int, token string) ([]Slot, error) {
	path := fmt.Sprintf("/interventions/available/%d?typeId=%d", providerID, typeID)

	var slots []Slot
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &slots); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlotFetch, err)
	}
	return slots, nil
}

// BookIntervention posts the reservation for a slot as a multipart form.
// A non-2xx answer surfaces as *BookingError carrying the response body.
func (c *Client) BookIntervention(ctx context.Context, slotID int, booking BookingRequest, token string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"clientId":    strconv.Itoa(booking.ClientID),
		"marqueVelo":  booking.BikeBrand,
		"modeleVelo":  booking.BikeModel,
		"commentaire": booking.Comment,
		"electrique":  boolFlag(booking.IsElectric),
		"adresse":     booking.Address,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if booking.Photo != nil {
		part, err := writer.CreateFormFile("photo", booking.Photo.Filename)
		if err != nil {
			return fmt.Errorf("create photo part: %w", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(booking.Photo.Data)); err != nil {
			return fmt.Errorf("copy photo: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/interventions/%d/book", c.baseURL, slotID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BookingError{
			StatusCode: resp.StatusCode,
			Message:    truncate(strings.TrimSpace(string(respBody)), 300),
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	requestID := uuid.NewString()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := truncate(string(respBody), 300)
		c.logger.Warn("booking API non-2xx response",
			"status", resp.StatusCode, "path", path, "request_id", requestID, "body", msg)
		return fmt.Errorf("booking API returned %d: %s", resp.StatusCode, msg)
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
