package gatherapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// encodeForm builds a multipart form body from the given fields.
// The backend expects multipart encoding on every mutating endpoint, even for
// single-field payloads.
func encodeForm(fields map[string]string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to encode form field %q: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// doRequest performs an HTTP request, attaching the device header.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// getJSON performs a GET and decodes the 2xx response into target.
func (c *Client) getJSON(ctx context.Context, path string, headers map[string]string, target any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, headers)
	if err != nil {
		return err
	}

	return c.decodeJSON(resp, path, target)
}

// postForm performs a multipart POST and decodes the 2xx response into
// target. A nil target discards the body after the error check.
func (c *Client) postForm(
	ctx context.Context,
	path string,
	fields map[string]string,
	headers map[string]string,
	target any,
) error {
	body, contentType, err := encodeForm(fields)
	if err != nil {
		return err
	}

	merged := map[string]string{"Content-Type": contentType}
	for k, v := range headers {
		merged[k] = v
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, body, merged)
	if err != nil {
		return err
	}

	return c.decodeJSON(resp, path, target)
}

// decodeJSON drains the response, normalizes error envelopes, and decodes a
// successful body into target.
func (c *Client) decodeJSON(resp *http.Response, path string, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, bodyBytes); err != nil {
		c.log.Debug("request failed", "path", path, "status", resp.StatusCode)
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
