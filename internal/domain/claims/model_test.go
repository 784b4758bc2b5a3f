package claims

import "testing"

func TestCanTransition_Lifecycle(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusGenerated, StatusSubmitted},
		{StatusSubmitted, StatusAccepted},
		{StatusSubmitted, StatusRejected},
		{StatusRejected, StatusAppealed},
		{StatusAppealed, StatusResubmitted},
		{StatusResubmitted, StatusAccepted},
		{StatusResubmitted, StatusRejected},
		{StatusAccepted, StatusPaid},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusGenerated, StatusPaid},
		{StatusGenerated, StatusAccepted},
		{StatusPaid, StatusSubmitted},
		{StatusRejected, StatusSubmitted},
		{StatusAccepted, StatusRejected},
		{StatusSubmitted, StatusGenerated},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be forbidden", tc.from, tc.to)
		}
	}
}
