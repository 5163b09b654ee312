//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultArtificialAnalysisURL is the public API base URL.
const DefaultArtificialAnalysisURL = "https://artificialanalysis.ai/api/v2"

// Metric paths within one entry of the models payload.
var aaMetrics = map[string]string{
	MetricIntelligence:     "evaluations.artificial_analysis_intelligence_index",
	MetricCoding:           "evaluations.artificial_analysis_coding_index",
	MetricMath:             "evaluations.artificial_analysis_math_index",
	MetricPriceBlended:     "pricing.price_1m_blended_3_to_1",
	MetricOutputSpeed:      "median_output_tokens_per_second",
	MetricTimeToFirstToken: "median_time_to_first_token_seconds",
}

// aaBenchmarks are copied under their own names when present.
var aaBenchmarks = []string{"mmlu_pro", "gpqa", "hle", "livecodebench", "scicode", "math_500", "aime"}

// ParseArtificialAnalysis converts a /data/llms/models payload into
// models. Entries are keyed by slug. Metrics that are missing or null are
// left out rather than recorded as zero.
func ParseArtificialAnalysis(data []byte) ([]Model, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid ArtificialAnalysis payload")
	}
	entries := gjson.GetBytes(data, "data")
	if !entries.IsArray() {
		return nil, errors.New("ArtificialAnalysis payload has no data array")
	}

	var models []Model
	entries.ForEach(func(_, e gjson.Result) bool {
		id := e.Get("slug").String()
		if id == "" {
			id = e.Get("id").String()
		}
		if id == "" {
			return true
		}

		m := Model{
			ID:       id,
			Name:     e.Get("name").String(),
			Provider: e.Get("model_creator.name").String(),
			Metrics:  make(map[string]float64),
		}
		for name, path := range aaMetrics {
			if v := e.Get(path); v.Exists() && v.Type == gjson.Number {
				m.Metrics[name] = v.Float()
			}
		}
		for _, name := range aaBenchmarks {
			if v := e.Get("evaluations." + name); v.Exists() && v.Type == gjson.Number {
				m.Metrics[name] = v.Float()
			}
		}
		models = append(models, m)
		return true
	})
	return models, nil
}

// LoadArtificialAnalysisFile reads a saved models payload.
func LoadArtificialAnalysisFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ArtificialAnalysis payload: %w", err)
	}
	models, err := ParseArtificialAnalysis(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemory(models...), nil
}

// ArtificialAnalysisClient fetches model data from the ArtificialAnalysis
// API.
type ArtificialAnalysisClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewArtificialAnalysisClient creates a client. An empty baseURL uses
// DefaultArtificialAnalysisURL.
func NewArtificialAnalysisClient(baseURL, apiKey string, httpClient *http.Client) *ArtificialAnalysisClient {
	if baseURL == "" {
		baseURL = DefaultArtificialAnalysisURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ArtificialAnalysisClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// FetchModels downloads and parses the LLM models list.
func (c *ArtificialAnalysisClient) FetchModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/llms/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ArtificialAnalysis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("ArtificialAnalysis API error (%d): %s", resp.StatusCode, msg)
	}
	return ParseArtificialAnalysis(body)
}

// Load fetches the models list into a Memory catalog.
func (c *ArtificialAnalysisClient) Load(ctx context.Context) (*Memory, error) {
	models, err := c.FetchModels(ctx)
	if err != nil {
		return nil, err
	}
	return NewMemory(models...), nil
}
