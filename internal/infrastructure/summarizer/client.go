// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package summarizer contains the HTTP client for the external text
// summarization service.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-twin-attendant-service/internal/logging"
)

const (
	// DefaultClientTimeout bounds a single summarization call. Model inference
	// on a large chunk is slow, so this is much longer than a typical API
	// timeout.
	DefaultClientTimeout = 120 * time.Second
	// DefaultProbeTimeout bounds the startup health probe.
	DefaultProbeTimeout = 10 * time.Second
)

// Config holds the configuration for the summarizer client
type Config struct {
	// BaseURL is the summarization service base URL
	BaseURL string
	// Optional: override timeout for summarization requests
	Timeout time.Duration
	// Optional: override timeout for the health probe
	ProbeTimeout time.Duration
}

// Client is an HTTP client for the summarization service
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements Summarizer
var _ domain.Summarizer = (*Client)(nil)

// NewClient creates a new summarizer client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// summarizeRequest is the wire format for a summarization call.
type summarizeRequest struct {
	Text      string `json:"text"`
	MinLength int    `json:"min_length,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
}

// summarizeResponse is the wire format of a summarization result.
type summarizeResponse struct {
	Summary string `json:"summary"`
}

// SummarizeText sends text to the summarization service and returns the
// condensed summary. No retries: a summarization call is expensive and the
// caller already degrades gracefully when a chunk fails.
func (c *Client) SummarizeText(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.NewValidationError("text to summarize is required")
	}

	body, err := json.Marshal(summarizeRequest{
		Text:      text,
		MinLength: minWords,
		MaxLength: maxWords,
	})
	if err != nil {
		return "", domain.NewInternalError("failed to marshal summarize request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		return "", domain.NewInternalError("failed to create summarize request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewUnavailableError("summarization service unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		slog.ErrorContext(ctx, "summarization request failed",
			"status", resp.StatusCode,
			"duration", time.Since(startTime).String(),
			"body", string(respBody))
		return "", domain.NewInternalError(fmt.Sprintf("summarization failed with status %d", resp.StatusCode))
	}

	var result summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", domain.NewInternalError("failed to decode summarize response", err)
	}

	slog.DebugContext(ctx, "summarization request completed",
		"duration", time.Since(startTime).String(),
		"input_chars", len(text),
		"summary_chars", len(result.Summary))

	return strings.TrimSpace(result.Summary), nil
}

// Probe checks the service's health endpoint once. The service runs the probe
// at startup and records the result instead of discovering a missing backend
// in the middle of a finalization pipeline.
func (c *Client) Probe(ctx context.Context) domain.Capability {
	if c.config.BaseURL == "" {
		return domain.Unavailable("summarization service URL is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/healthz", nil)
	if err != nil {
		return domain.Unavailable(fmt.Sprintf("invalid summarization service URL: %v", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "summarization service probe failed", logging.ErrKey, err)
		return domain.Unavailable(fmt.Sprintf("health probe failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.Unavailable(fmt.Sprintf("health probe returned status %d", resp.StatusCode))
	}

	return domain.Available()
}
