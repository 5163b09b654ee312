//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrorMessageFunc extracts a readable message from an error body.
type ErrorMessageFunc func(body []byte) string

// PostJSON sends body as JSON to url and decodes a 200 response into out.
// Non-200 responses become an *Error via StatusError; failures to reach
// the server become an *Error via TransportError.
func PostJSON(
	ctx context.Context,
	client *http.Client,
	url string,
	headers map[string]string,
	body, out any,
	errMessage ErrorMessageFunc,
) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return TransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if errMessage != nil {
			msg = errMessage(respBody)
		}
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return StatusError(resp.StatusCode, msg)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Code: ErrCodeModelError, Message: "failed to parse response: " + err.Error(), Err: err}
	}
	return nil
}
