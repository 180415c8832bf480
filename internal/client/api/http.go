package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkotelnikov/spotlist/internal/common"
)

// HTTPClient implements Client over the spotlist HTTP API. It performs no
// retries: the submit action itself is the retry mechanism.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
}

// apiError is the error body every endpoint returns on failure.
type apiError struct {
	Error string `json:"error"`
}

// do sends one JSON request and decodes the JSON response into out (when out
// is non-nil). Non-2xx responses are wrapped with sentinel so callers can
// classify the failed step with errors.Is.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, sentinel error) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		_ = json.NewDecoder(resp.Body).Decode(&ae)
		if ae.Error == "" {
			ae.Error = resp.Status
		}
		return fmt.Errorf("%w: %s", sentinel, ae.Error)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) MergeSpot(ctx context.Context, req MergeSpotRequest) (string, error) {
	var resp MergeSpotResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/spots/merge", req, &resp, common.ErrMergeRejected); err != nil {
		return "", err
	}
	if resp.SpotID == "" {
		return "", fmt.Errorf("%w: empty spot id in response", common.ErrMergeRejected)
	}
	return resp.SpotID, nil
}

func (c *HTTPClient) AddPhoto(ctx context.Context, req AddPhotoRequest) (*UploadedPhoto, error) {
	var resp UploadedPhoto
	if err := c.do(ctx, http.MethodPost, "/api/v1/photos", req, &resp, common.ErrMetadataRegistration); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeletePhoto(ctx context.Context, photoID string) (string, error) {
	var resp DeletePhotoResponse
	if err := c.do(ctx, http.MethodDelete, "/api/v1/photos/"+photoID, nil, &resp, common.ErrNotFound); err != nil {
		return "", err
	}
	return resp.StoragePath, nil
}

func (c *HTTPClient) DeleteSpot(ctx context.Context, spotID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/spots/"+spotID, nil, nil, common.ErrNotFound)
}

func (c *HTTPClient) DeleteRating(ctx context.Context, spotID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/spots/"+spotID+"/rating", nil, nil, common.ErrNotFound)
}
