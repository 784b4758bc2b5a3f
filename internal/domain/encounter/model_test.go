package encounter

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCoverageInForce(t *testing.T) {
	term := date("2026-06-30")

	cases := []struct {
		name    string
		cov     Coverage
		service string
		want    bool
	}{
		{"active within window", Coverage{Active: true, EffectiveDate: date("2026-01-01"), TermDate: &term}, "2026-03-15", true},
		{"inactive policy", Coverage{Active: false, EffectiveDate: date("2026-01-01")}, "2026-03-15", false},
		{"before effective", Coverage{Active: true, EffectiveDate: date("2026-01-01")}, "2025-12-31", false},
		{"after termination", Coverage{Active: true, EffectiveDate: date("2026-01-01"), TermDate: &term}, "2026-07-01", false},
		{"on termination day", Coverage{Active: true, EffectiveDate: date("2026-01-01"), TermDate: &term}, "2026-06-30", true},
		{"open ended", Coverage{Active: true, EffectiveDate: date("2026-01-01")}, "2030-01-01", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cov.InForce(date(tc.service)); got != tc.want {
				t.Errorf("InForce(%s) = %v, want %v", tc.service, got, tc.want)
			}
		})
	}
}
