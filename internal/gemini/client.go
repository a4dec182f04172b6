// Package gemini is a minimal client for the Google Generative Language
// REST API (v1beta generateContent). It exposes exactly what the agent
// gateway needs: one synchronous generation call per model with enough
// error detail to drive the fallback chain.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 60 * time.Second
)

// Client communicates with the Generative Language API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a Client with the given API key.
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// --- wire types ---

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	SystemInstruction *content        `json:"system_instruction,omitempty"`
	Contents          []content       `json:"contents"`
	SafetySettings    []safetySetting `json:"safetySettings,omitempty"`
}

type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// allCategoriesOpen disables provider-side content blocking for every
// harm category. Policy choice carried over from the deployed service.
func allCategoriesOpen() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	settings := make([]safetySetting, len(categories))
	for i, c := range categories {
		settings[i] = safetySetting{Category: c, Threshold: "BLOCK_NONE"}
	}
	return settings
}

// --- errors ---

// APIError is a non-2xx response from the provider. Body carries the raw
// error payload so callers can classify the failure (quota vs other).
type APIError struct {
	Model  string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini %s: HTTP %d: %s", e.Model, e.Status, e.Body)
}

// BlockedError reports a 2xx response whose candidate carried no usable
// text (safety block, truncation, or an empty candidate list).
type BlockedError struct {
	Model        string
	FinishReason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("gemini %s: no usable text (finish reason %q)", e.Model, e.FinishReason)
}

// IsQuotaExhausted reports whether err is a provider error caused by quota
// exhaustion (RESOURCE_EXHAUSTED status in the error body, or HTTP 429).
func IsQuotaExhausted(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	return apiErr.Status == http.StatusTooManyRequests ||
		strings.Contains(apiErr.Body, "RESOURCE_EXHAUSTED")
}

// Generate sends one generateContent call for the given model and returns the
// first candidate's text. The system instruction and user message travel as
// separate fields. Returns *BlockedError when the provider answered 200 but
// produced no text, and *APIError for non-2xx responses.
func (c *Client) Generate(ctx context.Context, model, systemInstruction, userMessage string) (string, error) {
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userMessage}}},
		},
		SafetySettings: allCategoriesOpen(),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return "", &APIError{Model: model, Status: resp.StatusCode, Body: string(respBody)}
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", &BlockedError{Model: model}
	}
	cand := result.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0].Text == "" {
		return "", &BlockedError{Model: model, FinishReason: cand.FinishReason}
	}
	return cand.Content.Parts[0].Text, nil
}
