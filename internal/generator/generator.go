package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jgirmay/inquizzitive/internal/quiz/models"
)

// Generator produces multiple-choice questions for a quiz
type Generator interface {
	Generate(ctx context.Context, category, difficulty string, count int) ([]models.Question, error)
}

// GenerationError separates "model returned junk" from transport failures
type GenerationError struct {
	Reason  string
	Wrapped error
}

func (e *GenerationError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("question generation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("question generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Wrapped
}

// GeminiClient calls the generateContent REST endpoint
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ Generator = (*GeminiClient)(nil)

func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate asks the model for count questions. The decoded list is returned
// as-is; callers do not reshape it.
func (g *GeminiClient) Generate(ctx context.Context, category, difficulty string, count int) ([]models.Question, error) {
	if g.apiKey == "" {
		return nil, &GenerationError{Reason: "generator API key is not configured"}
	}

	text, err := g.call(ctx, buildPrompt(category, difficulty, count))
	if err != nil {
		return nil, err
	}

	raw := extractJSONArray(text)
	if raw == "" {
		return nil, &GenerationError{Reason: "no JSON array found in model response"}
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, &GenerationError{Reason: "invalid JSON from model", Wrapped: err}
	}
	return questions, nil
}

func (g *GeminiClient) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.7, ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", &GenerationError{Reason: "failed to marshal request", Wrapped: err}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Reason: "failed to create request", Wrapped: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GenerationError{Reason: "model request failed", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &GenerationError{Reason: fmt.Sprintf("model returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &GenerationError{Reason: "failed to decode model response", Wrapped: err}
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Reason: "model returned no candidates"}
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func buildPrompt(category, difficulty string, count int) string {
	return fmt.Sprintf(`Generate %d multiple-choice quiz questions about %s at %s difficulty.
Respond with only a JSON array. Each element must have exactly these fields:
  "question": the question text,
  "options": an array of exactly 4 answer strings,
  "answer": the correct option, copied exactly from "options",
  "explanation": one or two sentences explaining the answer.
Do not include any text outside the JSON array.`, count, category, difficulty)
}

// extractJSONArray strips markdown fences and returns the outermost [...] span
func extractJSONArray(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
