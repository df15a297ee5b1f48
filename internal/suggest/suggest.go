// Package suggest proposes new chore definitions via the Gemini API. The
// service is strictly best-effort: any failure — missing key, network error,
// bad status, unparseable response — yields an empty candidate list and the
// rest of the application carries on.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds suggestion service configuration from environment variables.
type Config struct {
	APIKey  string
	Model   string // defaults to gemini-2.5-flash
	BaseURL string // overridable for tests
}

// Candidate is a proposed chore definition. Entries missing a title or a
// point value are dropped before callers see them.
type Candidate struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Icon        string `json:"icon"`
}

type Service struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Service{
		config: cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.config.APIKey != ""
}

// Suggest asks for five household chores not already in existingTitles.
// It never returns an error; failures are logged and produce a nil slice.
func (s *Service) Suggest(ctx context.Context, existingTitles []string) []Candidate {
	if !s.Configured() {
		return nil
	}

	candidates, err := s.fetch(ctx, existingTitles)
	if err != nil {
		s.logger.Warn("chore suggestion failed", "error", err)
		return nil
	}

	var valid []Candidate
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) == "" || c.Points <= 0 {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (s *Service) fetch(ctx context.Context, existingTitles []string) ([]Candidate, error) {
	prompt := fmt.Sprintf(
		"Generate a list of 5 common household chores that are suitable for a family app. "+
			"Do not include these chores: %s. "+
			"Assign a reasonable point value between 10 and 500 based on difficulty. "+
			"Assign a suitable single emoji for the icon. "+
			"Respond with a JSON array of objects with keys title, description, points, icon.",
		strings.Join(existingTitles, ", "),
	)

	var reqBody generateRequest
	reqBody.Contents = []content{{Parts: []part{{Text: prompt}}}}
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.config.BaseURL, s.config.Model, s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("suggestion API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion API returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode suggestion response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("suggestion response is empty")
	}

	var candidates []Candidate
	text := genResp.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &candidates); err != nil {
		return nil, fmt.Errorf("parse candidate list: %w", err)
	}
	return candidates, nil
}
