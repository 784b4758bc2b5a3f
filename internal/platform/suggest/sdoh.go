package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/medbill/medbill/internal/domain/coding"
)

// CCMTier is the chronic-care-management recommendation derived from a
// patient's social-determinant burden.
type CCMTier string

const (
	TierNone     CCMTier = "none"
	TierStandard CCMTier = "standard"
	TierComplex  CCMTier = "complex"
)

// CCM tier score gates.
const (
	standardTierScore = 3.0
	complexTierScore  = 6.0
)

// Factor is one assessed social determinant: its Z-code, base weight, and
// assessed severity.
type Factor struct {
	ZCode       string  `json:"z_code"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Severity    string  `json:"severity"`
}

var severityMultiplier = map[string]float64{
	"mild":     1.0,
	"moderate": 1.5,
	"severe":   2.0,
}

// Score computes the complexity score: the sum of each factor's weight
// times its severity multiplier. Unknown severities count as mild.
func Score(factors []Factor) float64 {
	var total float64
	for _, f := range factors {
		mult := severityMultiplier[f.Severity]
		if mult == 0 {
			mult = 1.0
		}
		total += f.Weight * mult
	}
	return total
}

// TierFor maps a complexity score to a CCM tier recommendation.
func TierFor(score float64) CCMTier {
	switch {
	case score >= complexTierScore:
		return TierComplex
	case score >= standardTierScore:
		return TierStandard
	default:
		return TierNone
	}
}

// Assessment is the SDOH collaborator's output for one encounter.
type Assessment struct {
	Factors []Factor `json:"factors"`
	Score   float64  `json:"score"`
	Tier    CCMTier  `json:"tier"`
}

// Candidates renders the assessment's Z-codes as secondary-diagnosis
// candidates at SDOH priority, so reconciliation treats them as additive.
func (a *Assessment) Candidates() []coding.CandidateCode {
	out := make([]coding.CandidateCode, 0, len(a.Factors))
	for _, f := range a.Factors {
		if f.ZCode == "" {
			continue
		}
		out = append(out, coding.CandidateCode{
			System:      coding.SystemICD10,
			Code:        f.ZCode,
			Description: f.Description,
			Category:    coding.CategorySecondaryDx,
			Confidence:  70,
			Source:      coding.SourceSDOH,
			Rationale:   fmt.Sprintf("SDOH factor, severity %s", f.Severity),
		})
	}
	return out
}

// SDOHClient consumes the SDOH assessment collaborator. The remote supplies
// assessed factors; scoring and tier mapping run locally so the thresholds
// stay auditable here.
type SDOHClient struct {
	baseURL string
	http    *http.Client
}

func NewSDOHClient(baseURL string, timeout time.Duration) *SDOHClient {
	return &SDOHClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *SDOHClient) Name() string { return "sdoh" }

// Assess fetches the factor list and computes the score and tier.
func (c *SDOHClient) Assess(ctx context.Context, encounterID string) (*Assessment, error) {
	url := fmt.Sprintf("%s/v1/encounters/%s/sdoh", c.baseURL, encounterID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("sdoh assess: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sdoh assess: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sdoh assess: status %d", resp.StatusCode)
	}

	var payload struct {
		Factors []Factor `json:"factors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sdoh assess decode: %w", err)
	}

	a := &Assessment{Factors: payload.Factors}
	a.Score = Score(a.Factors)
	a.Tier = TierFor(a.Score)
	return a, nil
}

// Suggest implements Source.
func (c *SDOHClient) Suggest(ctx context.Context, encounterID string) ([]coding.CandidateCode, error) {
	a, err := c.Assess(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	return a.Candidates(), nil
}
