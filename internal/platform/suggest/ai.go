package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/medbill/medbill/internal/domain/coding"
)

// AIClient consumes the AI coding-suggestion collaborator. Whatever the
// remote claims, candidates are stamped with the AI source so the reconciler
// ranks them below the decision engine.
type AIClient struct {
	baseURL string
	http    *http.Client
}

func NewAIClient(baseURL string, timeout time.Duration) *AIClient {
	return &AIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *AIClient) Name() string { return "ai" }

type aiSuggestion struct {
	System      string   `json:"system"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Confidence  int      `json:"confidence"`
	Rationale   string   `json:"rationale"`
	Modifiers   []string `json:"modifiers"`
}

func (c *AIClient) Suggest(ctx context.Context, encounterID string) ([]coding.CandidateCode, error) {
	url := fmt.Sprintf("%s/v1/encounters/%s/suggestions", c.baseURL, encounterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ai suggest: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai suggest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai suggest: status %d", resp.StatusCode)
	}

	var payload struct {
		Suggestions []aiSuggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ai suggest decode: %w", err)
	}

	out := make([]coding.CandidateCode, 0, len(payload.Suggestions))
	for _, s := range payload.Suggestions {
		cand := coding.CandidateCode{
			System:      coding.System(s.System),
			Code:        s.Code,
			Description: s.Description,
			Category:    coding.Category(s.Category),
			Confidence:  s.Confidence,
			Source:      coding.SourceAI,
			Rationale:   s.Rationale,
			Modifiers:   s.Modifiers,
		}
		if cand.Code == "" || cand.Category == "" {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}
