package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DoPostSync performs a synchronous HTTP POST request with a JSON body and
// parses the JSON response into OutputStruct.
//
// Error handling strategy:
//   - Context errors (timeout, cancellation) are propagated immediately
//   - HTTP errors (connection failures, non-2xx status) return the error
//   - Response body close errors are logged but don't override primary errors
//   - JSON parsing errors include a response preview for debugging
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any) (*OutputStruct, error) {
	respBody, _, err := DoPostRaw(ctx, client, url, apiKey, body, "application/json")
	if err != nil {
		return nil, err
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return nil, fmt.Errorf("error unmarshaling response body: %w\nResponse preview: %s", err, TruncateString(string(respBody), 500))
	}

	return &resStruct, nil
}

// DoPostRaw performs a synchronous HTTP POST request with a JSON body and
// returns the raw response bytes and status code. Used directly for
// endpoints that return non-JSON payloads such as synthesized audio.
func DoPostRaw(ctx context.Context, client *http.Client, url string, apiKey string, body any, accept string) ([]byte, int, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error sending request: %w", err)
	}
	defer func(responseBody io.ReadCloser) {
		if closeErr := responseBody.Close(); closeErr != nil {
			// Log the close error, but don't override the main error.
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, res.StatusCode, fmt.Errorf("non-2xx status %d: %s", res.StatusCode, TruncateString(string(respBody), 500))
	}

	return respBody, res.StatusCode, nil
}
