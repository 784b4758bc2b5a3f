package decision

import (
	"strings"

	"github.com/medbill/medbill/internal/domain/encounter"
)

// Circumstance is one row of the modifier rule table: a billing circumstance,
// the modifier it maps to, the rationale recorded with it, and the predicate
// that detects it from encounter flags and documentation text.
type Circumstance struct {
	Name      string
	Modifier  string
	Rationale string
	Applies   func(enc *encounter.Encounter) bool
}

func narrativeContains(enc *encounter.Encounter, phrase string) bool {
	return strings.Contains(strings.ToLower(enc.Documentation.Narrative), phrase)
}

// circumstanceTable is evaluated in order; every matching row contributes
// its modifier. The table is fixed so the rule set stays auditable.
var circumstanceTable = []Circumstance{
	{
		Name:      "significant separately identifiable E/M",
		Modifier:  "25",
		Rationale: "significant, separately identifiable E/M service on the same day as a procedure",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.SeparateEM
		},
	},
	{
		Name:      "bilateral procedure",
		Modifier:  "50",
		Rationale: "procedure performed bilaterally in the same session",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.Bilateral || narrativeContains(enc, "bilateral")
		},
	},
	{
		Name:      "distinct procedural service",
		Modifier:  "59",
		Rationale: "distinct procedural service, not normally reported together",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.DistinctService
		},
	},
	{
		Name:      "repeat procedure, same provider",
		Modifier:  "76",
		Rationale: "repeat procedure by the same physician on the same day",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.RepeatSameDay
		},
	},
	{
		Name:      "repeat procedure, different provider",
		Modifier:  "77",
		Rationale: "repeat procedure by another physician on the same day",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.RepeatOtherProv
		},
	},
	{
		Name:      "repeat clinical laboratory test",
		Modifier:  "91",
		Rationale: "repeat clinical diagnostic laboratory test on the same day",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.RepeatLab
		},
	},
	{
		Name:      "synchronous telehealth",
		Modifier:  "95",
		Rationale: "service rendered via real-time interactive audio and video",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.Telehealth || enc.Type == "telehealth"
		},
	},
	{
		Name:      "separate encounter",
		Modifier:  "XE",
		Rationale: "distinct service because it occurred in a separate encounter",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.ReducedService && narrativeContains(enc, "separate encounter")
		},
	},
	{
		Name:      "separate practitioner",
		Modifier:  "XP",
		Rationale: "distinct service because it was performed by a different practitioner",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.ReducedService && narrativeContains(enc, "separate practitioner")
		},
	},
	{
		Name:      "separate structure",
		Modifier:  "XS",
		Rationale: "distinct service because it was performed on a separate organ or structure",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.ReducedService && narrativeContains(enc, "separate structure")
		},
	},
	{
		Name:      "unusual non-overlapping service",
		Modifier:  "XU",
		Rationale: "distinct because it does not overlap the usual components of the main service",
		Applies: func(enc *encounter.Encounter) bool {
			return enc.Flags.ReducedService &&
				!narrativeContains(enc, "separate encounter") &&
				!narrativeContains(enc, "separate practitioner") &&
				!narrativeContains(enc, "separate structure")
		},
	},
}

// selectModifiers evaluates the circumstance table and returns the matched
// modifiers with their rationales keyed by modifier code.
func selectModifiers(enc *encounter.Encounter) ([]string, map[string]string) {
	var mods []string
	rationales := make(map[string]string)
	for _, c := range circumstanceTable {
		if c.Applies(enc) {
			mods = append(mods, c.Modifier)
			rationales[c.Modifier] = c.Rationale
		}
	}
	return mods, rationales
}
