package decision

import (
	"github.com/medbill/medbill/internal/domain/encounter"
)

// Office visit code families by level. Level 1 has no MDM mapping; it is
// reachable only through time-based leveling of very short visits.
var (
	newPatientCodes = [5]string{"99201", "99202", "99203", "99204", "99205"}
	estPatientCodes = [5]string{"99211", "99212", "99213", "99214", "99215"}
)

// levelFromTime maps total visit minutes to an E/M level. Applies only when
// counseling and coordination dominated the visit.
func levelFromTime(minutes int) int {
	switch {
	case minutes < 20:
		return 1
	case minutes < 30:
		return 2
	case minutes < 40:
		return 3
	case minutes < 60:
		return 4
	default:
		return 5
	}
}

var dataReviewPoints = map[string]int{
	"minimal":   1,
	"limited":   2,
	"moderate":  3,
	"extensive": 4,
}

var riskPoints = map[string]int{
	"minimal":  1,
	"low":      2,
	"moderate": 3,
	"high":     4,
}

// mdmScore computes the medical-decision-making score scaled to 40-100 from
// problem count, data-review depth, and risk. The raw point sum ranges 3-11.
func mdmScore(doc encounter.Documentation) int {
	problems := doc.ProblemCount
	if problems < 1 {
		problems = 1
	}
	if problems > 3 {
		problems = 3
	}

	data := dataReviewPoints[doc.DataReview]
	if data == 0 {
		data = 1
	}
	risk := riskPoints[doc.Risk]
	if risk == 0 {
		risk = 1
	}

	sum := problems + data + risk
	// Linear map of 3..11 onto 40..100.
	return 40 + (sum-3)*60/8
}

// levelFromMDM maps a scaled MDM score to an E/M level.
func levelFromMDM(score int) int {
	switch {
	case score <= 50:
		return 2
	case score <= 75:
		return 3
	case score <= 80:
		return 4
	default:
		return 5
	}
}

// docCompleteness scores the note 0-100 on presence of the three E/M
// documentation elements and lists what is missing.
func docCompleteness(doc encounter.Documentation) (int, []string) {
	score := 0
	var missing []string

	if doc.HasHistory {
		score += 33
	} else {
		missing = append(missing, "history")
	}
	if doc.HasExam {
		score += 33
	} else {
		missing = append(missing, "exam")
	}
	if doc.ProblemCount > 0 && doc.DataReview != "" && doc.Risk != "" {
		score += 34
	} else {
		missing = append(missing, "medical-decision-making")
	}
	return score, missing
}

// levelEM runs the E/M determination node. Time-based leveling applies only
// when more than half the visit was counseling or coordination of care;
// otherwise MDM leveling is the default.
func levelEM(enc *encounter.Encounter) *EMResult {
	doc := enc.Documentation
	res := &EMResult{}

	if doc.TotalMinutes > 0 && doc.CounselingMinutes*2 > doc.TotalMinutes {
		res.Method = MethodTime
		res.Level = levelFromTime(doc.TotalMinutes)
	} else {
		res.Method = MethodMDM
		res.MDMScore = mdmScore(doc)
		res.Level = levelFromMDM(res.MDMScore)
	}

	if enc.NewPatient {
		res.Code = newPatientCodes[res.Level-1]
	} else {
		res.Code = estPatientCodes[res.Level-1]
	}

	res.DocScore, res.MissingElements = docCompleteness(doc)
	return res
}
