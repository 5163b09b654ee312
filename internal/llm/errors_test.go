//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		code      string
		retryable bool
	}{
		{http.StatusTooManyRequests, ErrCodeRateLimit, true},
		{http.StatusUnauthorized, ErrCodeInvalidKey, false},
		{http.StatusForbidden, ErrCodeInvalidKey, false},
		{http.StatusBadRequest, ErrCodeInvalidRequest, false},
		{http.StatusNotFound, ErrCodeInvalidRequest, false},
		{http.StatusGatewayTimeout, ErrCodeTimeout, true},
		{http.StatusServiceUnavailable, ErrCodeUnavailable, true},
		{http.StatusInternalServerError, ErrCodeUnavailable, true},
	}
	for _, tt := range tests {
		e := StatusError(tt.status, "boom")
		if e.Code != tt.code {
			t.Errorf("status %d: expected code %s, got %s", tt.status, tt.code, e.Code)
		}
		if e.Retryable != tt.retryable {
			t.Errorf("status %d: expected retryable %v", tt.status, tt.retryable)
		}
		if IsRetryable(fmt.Errorf("wrapped: %w", e)) != tt.retryable {
			t.Errorf("status %d: IsRetryable did not see through wrapping", tt.status)
		}
	}
}

func TestTransportError(t *testing.T) {
	e := TransportError(fmt.Errorf("dial: %w", context.DeadlineExceeded))
	if e.Code != ErrCodeTimeout {
		t.Errorf("expected timeout, got %s", e.Code)
	}
	if !errors.Is(e, context.DeadlineExceeded) {
		t.Error("expected error to unwrap to context.DeadlineExceeded")
	}

	e = TransportError(errors.New("connection refused"))
	if e.Code != ErrCodeNetworkError {
		t.Errorf("expected network_error, got %s", e.Code)
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("expected custom header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected JSON content type")
		}
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"msg":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer server.Close()

	headers := map[string]string{"X-Test": "yes"}

	var out struct {
		Answer string `json:"answer"`
	}
	if err := PostJSON(context.Background(), server.Client(), server.URL+"/ok", headers, map[string]string{}, &out, nil); err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out.Answer != "ok" {
		t.Errorf("expected ok, got %s", out.Answer)
	}

	err := PostJSON(context.Background(), server.Client(), server.URL+"/fail", headers, nil, &out,
		func(body []byte) string { return "custom: " + string(body) })
	var llmErr *Error
	if !errors.As(err, &llmErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if llmErr.Code != ErrCodeRateLimit || llmErr.Message != `custom: {"msg":"slow down"}` {
		t.Errorf("unexpected error: %+v", llmErr)
	}
}

func TestPostJSON_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out map[string]any
	err := PostJSON(ctx, server.Client(), server.URL, nil, nil, &out, nil)
	var llmErr *Error
	if !errors.As(err, &llmErr) || llmErr.Code != ErrCodeTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestFormatContext(t *testing.T) {
	if FormatContext("  ") != "" {
		t.Error("expected empty context to format as empty")
	}
	got := FormatContext("--- Document 1 ---\nfacts\n\n")
	want := "Use the following context to answer the question:\n\n--- Document 1 ---\nfacts\n"
	if got != want {
		t.Errorf("unexpected format: %q", got)
	}
}
