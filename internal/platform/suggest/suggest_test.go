package suggest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/medbill/medbill/internal/domain/coding"
)

func TestScore_DocumentedScenario(t *testing.T) {
	// Homelessness (weight 3, moderate) + food insecurity (weight 2,
	// moderate) scores 4.5 + 3.0 = 7.5, landing in the complex tier.
	factors := []Factor{
		{ZCode: "Z59.0", Description: "Homelessness", Weight: 3, Severity: "moderate"},
		{ZCode: "Z59.41", Description: "Food insecurity", Weight: 2, Severity: "moderate"},
	}
	score := Score(factors)
	if score != 7.5 {
		t.Errorf("score = %v, want 7.5", score)
	}
	if tier := TierFor(score); tier != TierComplex {
		t.Errorf("tier = %s, want complex", tier)
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		score float64
		want  CCMTier
	}{
		{0, TierNone}, {2.9, TierNone}, {3.0, TierStandard}, {5.9, TierStandard}, {6.0, TierComplex}, {10, TierComplex},
	}
	for _, tc := range cases {
		if got := TierFor(tc.score); got != tc.want {
			t.Errorf("TierFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestScore_UnknownSeverityCountsAsMild(t *testing.T) {
	if got := Score([]Factor{{ZCode: "Z59.0", Weight: 3, Severity: "unspecified"}}); got != 3.0 {
		t.Errorf("score = %v, want 3.0", got)
	}
}

func TestSDOHClient_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/encounters/enc-1/sdoh" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"factors":[{"z_code":"Z59.0","description":"Homelessness","weight":3,"severity":"moderate"}]}`))
	}))
	defer srv.Close()

	client := NewSDOHClient(srv.URL, time.Second)
	cands, err := client.Suggest(context.Background(), "enc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("candidates = %v", cands)
	}
	c := cands[0]
	if c.Code != "Z59.0" || c.Source != coding.SourceSDOH || c.Category != coding.CategorySecondaryDx {
		t.Errorf("candidate = %+v", c)
	}
}

func TestAIClient_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"suggestions":[
			{"system":"ICD10","code":"E11.9","category":"principal_diagnosis","confidence":88,"rationale":"documented diabetes"},
			{"system":"CPT","code":"","category":"procedure"}
		]}`))
	}))
	defer srv.Close()

	client := NewAIClient(srv.URL, time.Second)
	cands, err := client.Suggest(context.Background(), "enc-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("candidates = %v, want blank-code entry dropped", cands)
	}
	if cands[0].Source != coding.SourceAI {
		t.Errorf("source = %s, want ai regardless of payload", cands[0].Source)
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Suggest(context.Context, string) ([]coding.CandidateCode, error) {
	return nil, errors.New("connection refused")
}

type staticSource struct{ cands []coding.CandidateCode }

func (staticSource) Name() string { return "static" }
func (s staticSource) Suggest(context.Context, string) ([]coding.CandidateCode, error) {
	return s.cands, nil
}

func TestGather_ToleratesFailingSource(t *testing.T) {
	good := staticSource{cands: []coding.CandidateCode{{Code: "Z59.0", Category: coding.CategorySecondaryDx, Source: coding.SourceSDOH}}}
	got := Gather(context.Background(), []Source{failingSource{}, good}, "enc-1", zerolog.Nop())
	if len(got) != 1 || got[0].Code != "Z59.0" {
		t.Errorf("gathered = %v", got)
	}
}
