package decision

import (
	"testing"

	"github.com/medbill/medbill/internal/domain/encounter"
)

func TestLevelFromTime(t *testing.T) {
	cases := []struct {
		minutes int
		want    int
	}{
		{10, 1}, {19, 1}, {20, 2}, {29, 2}, {30, 3}, {39, 3}, {40, 4}, {59, 4}, {60, 5}, {90, 5},
	}
	for _, tc := range cases {
		if got := levelFromTime(tc.minutes); got != tc.want {
			t.Errorf("levelFromTime(%d) = %d, want %d", tc.minutes, got, tc.want)
		}
	}
}

func TestMDMScoreRange(t *testing.T) {
	lowest := mdmScore(encounter.Documentation{ProblemCount: 1, DataReview: "minimal", Risk: "minimal"})
	if lowest != 40 {
		t.Errorf("minimum score = %d, want 40", lowest)
	}
	highest := mdmScore(encounter.Documentation{ProblemCount: 3, DataReview: "extensive", Risk: "high"})
	if highest != 100 {
		t.Errorf("maximum score = %d, want 100", highest)
	}
}

func TestLevelFromMDM(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{40, 2}, {50, 2}, {51, 3}, {75, 3}, {76, 4}, {80, 4}, {81, 5}, {100, 5},
	}
	for _, tc := range cases {
		if got := levelFromMDM(tc.score); got != tc.want {
			t.Errorf("levelFromMDM(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}

func TestLevelEM_MDMDefault(t *testing.T) {
	// 35 minutes but counseling did not dominate, so MDM leveling applies.
	enc := &encounter.Encounter{
		Documentation: encounter.Documentation{
			HasHistory:        true,
			HasExam:           true,
			ProblemCount:      2,
			DataReview:        "limited",
			Risk:              "moderate",
			TotalMinutes:      35,
			CounselingMinutes: 10,
		},
	}

	res := levelEM(enc)
	if res.Method != MethodMDM {
		t.Fatalf("method = %s, want mdm", res.Method)
	}
	// problems 2 + data 2 + risk 3 = 7 -> scaled 70 -> level 3.
	if res.MDMScore != 70 || res.Level != 3 {
		t.Errorf("score = %d level = %d, want 70 level 3", res.MDMScore, res.Level)
	}
	if res.Code != "99213" {
		t.Errorf("code = %s, want 99213 for established patient", res.Code)
	}

	enc.NewPatient = true
	if res := levelEM(enc); res.Code != "99203" {
		t.Errorf("code = %s, want 99203 for new patient", res.Code)
	}
}

func TestLevelEM_TimeBasedWhenCounselingDominates(t *testing.T) {
	enc := &encounter.Encounter{
		Documentation: encounter.Documentation{
			HasHistory:        true,
			HasExam:           true,
			ProblemCount:      1,
			DataReview:        "minimal",
			Risk:              "minimal",
			TotalMinutes:      45,
			CounselingMinutes: 30,
		},
	}

	res := levelEM(enc)
	if res.Method != MethodTime {
		t.Fatalf("method = %s, want time", res.Method)
	}
	if res.Level != 4 || res.Code != "99214" {
		t.Errorf("level = %d code = %s, want 4 / 99214", res.Level, res.Code)
	}

	enc.NewPatient = true
	if res := levelEM(enc); res.Code != "99204" {
		t.Errorf("code = %s, want 99204 for new patient", res.Code)
	}
}

func TestLevelEM_ExactlyHalfCounselingUsesMDM(t *testing.T) {
	enc := &encounter.Encounter{
		Documentation: encounter.Documentation{
			ProblemCount:      1,
			DataReview:        "minimal",
			Risk:              "minimal",
			TotalMinutes:      40,
			CounselingMinutes: 20,
		},
	}
	if res := levelEM(enc); res.Method != MethodMDM {
		t.Errorf("method = %s, want mdm when counseling is not a strict majority", res.Method)
	}
}

func TestDocCompleteness(t *testing.T) {
	full := encounter.Documentation{HasHistory: true, HasExam: true, ProblemCount: 1, DataReview: "minimal", Risk: "low"}
	score, missing := docCompleteness(full)
	if score != 100 || len(missing) != 0 {
		t.Errorf("score = %d missing = %v, want 100 with nothing missing", score, missing)
	}

	partial := encounter.Documentation{HasHistory: true}
	score, missing = docCompleteness(partial)
	if score != 33 {
		t.Errorf("score = %d, want 33", score)
	}
	if len(missing) != 2 || missing[0] != "exam" || missing[1] != "medical-decision-making" {
		t.Errorf("missing = %v", missing)
	}
}
