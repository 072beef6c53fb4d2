// Package gemini calls the Gemini generateContent API for evaluation
// feedback.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonerrors "formquali-workers/internal/common/errors"
	commonhttp "formquali-workers/internal/common/http"
)

type request struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// StructuredFeedback is the model's JSON answer to the structured prompt.
// Answers holds the per-question entries keyed by question number.
type StructuredFeedback struct {
	AvaliacaoIA string                     `json:"avaliacao_ia"`
	SugestaoIA  string                     `json:"sugestao_ia"`
	Answers     map[string]json.RawMessage `json:"-"`
}

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *commonhttp.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    commonhttp.NewClient(timeout),
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Generate sends prompt as a single user turn and returns the first
// candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", commonerrors.NewAINotConfiguredError()
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	body := request{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     0.4,
			MaxOutputTokens: 1024,
		},
	}

	var resp response
	if err := c.http.DoJSON(ctx, http.MethodPost, endpoint, nil, body, &resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", commonerrors.NewAITimeoutError()
		}
		return "", commonerrors.NewAIFeedbackFailedError(err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", commonerrors.NewAIResponseInvalidError("")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateStructured sends the structured prompt and parses the JSON the
// model returns, tolerating markdown code fences around it.
func (c *Client) GenerateStructured(ctx context.Context, prompt string) (*StructuredFeedback, error) {
	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseStructured(text)
}

func ParseStructured(text string) (*StructuredFeedback, error) {
	cleaned := CleanJSON(text)

	var all map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &all); err != nil {
		return nil, commonerrors.NewAIResponseInvalidError(text)
	}

	fb := &StructuredFeedback{Answers: make(map[string]json.RawMessage)}
	for key, raw := range all {
		switch key {
		case "avaliacao_ia":
			_ = json.Unmarshal(raw, &fb.AvaliacaoIA)
		case "sugestao_ia":
			_ = json.Unmarshal(raw, &fb.SugestaoIA)
		default:
			fb.Answers[key] = raw
		}
	}
	return fb, nil
}

// CleanJSON strips a ```json fence the model may wrap its answer in.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
