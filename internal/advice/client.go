// Package advice fetches coaching text for an exercise from an
// OpenAI-compatible chat completions endpoint. The text is advisory only
// and never enters the workout data model.
package advice

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

// Client calls the guidance endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// New creates a Client for the given endpoint and model.
func New(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

const promptTemplate = `You are a fitness coach.
You are given an exercise, provide clear instructions on how to perform the exercise. Include if any equipment is required.
Explain the exercise in detail for a beginner.

The exercise name is %q.

Keep it short and concise. Use markdown formatting.

Use the following format:

## Equipment Required

## Instructions

### Tips

### Variations

### Safety

Keep spacing between the headings and the content.
Always use headings and subheadings.`

// Guidance returns markdown instructions for the named exercise.
func (c *Client) Guidance(ctx context.Context, exerciseName string) (string, error) {
	if exerciseName == "" {
		return "", fmt.Errorf("advice: exercise name is required")
	}

	payload, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(promptTemplate, exerciseName)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("advice: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("advice: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("advice: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("advice: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice: endpoint returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("advice: decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("advice: empty response")
	}
	return result.Choices[0].Message.Content, nil
}
