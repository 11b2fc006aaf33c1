package detector

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
)

const (
	defaultDetectorURL  = "http://localhost:8600"
	defaultMinNeighbors = 5
	defaultMinSize      = 30
)

// Client calls the detector sidecar over HTTP.
type Client struct {
	baseURL      string
	minNeighbors int
	minSize      int
	client       *http.Client
}

// NewClient creates a detector client. Zero values fall back to defaults.
func NewClient(baseURL string, minNeighbors, minSize int) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if minNeighbors <= 0 {
		minNeighbors = defaultMinNeighbors
	}
	if minSize <= 0 {
		minSize = defaultMinSize
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		minNeighbors: minNeighbors,
		minSize:      minSize,
		client:       &http.Client{},
	}
}

// detectResponse represents the response from the detector sidecar.
type detectResponse struct {
	Faces []Box `json:"faces"`
}

// Detect posts the image to the sidecar and returns the detected boxes.
// No faces means an empty slice.
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]Box, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	endpoint := c.baseURL + "/detect" +
		"?min_neighbors=" + strconv.Itoa(c.minNeighbors) +
		"&min_size=" + strconv.Itoa(c.minSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detector request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result detectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal detector response: %w", err)
	}
	return result.Faces, nil
}
