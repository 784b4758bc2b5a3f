package fees

import (
	"fmt"
	"sort"
	"strings"
)

// Cents is a money amount in integer cents. Claims are legal documents, so
// line charges and totals must sum exactly; floating point is not used for
// money anywhere in this package.
type Cents int64

// Dollars renders the amount as a decimal dollar string, e.g. 8500 -> "85.00".
func (c Cents) Dollars() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// RateSource identifies which tier of the fallback chain priced a line.
type RateSource string

const (
	RateContracted   RateSource = "contracted"
	RateChargemaster RateSource = "chargemaster"
	RateReference    RateSource = "reference"
	RateDefault      RateSource = "default"
)

// ScheduleKind distinguishes the fee schedule tiers in storage.
type ScheduleKind string

const (
	KindContracted   ScheduleKind = "contracted"
	KindChargemaster ScheduleKind = "chargemaster"
	KindReference    ScheduleKind = "reference"
)

// FeeScheduleEntry is one priced (code, modifier-set) row. The uniqueness
// key is (schedule, system, code, mod1..mod4): 99213 with modifier 25 is a
// different priced entity from bare 99213.
type FeeScheduleEntry struct {
	ScheduleID string `db:"schedule_id" json:"schedule_id"`
	CodeSystem string `db:"code_system" json:"code_system"`
	Code       string `db:"code" json:"code"`
	Mod1       string `db:"mod1" json:"mod1,omitempty"`
	Mod2       string `db:"mod2" json:"mod2,omitempty"`
	Mod3       string `db:"mod3" json:"mod3,omitempty"`
	Mod4       string `db:"mod4" json:"mod4,omitempty"`
	PriceCents Cents  `db:"price_cents" json:"price_cents"`
}

// ModifierKey is the four normalized modifier slots of a lookup key.
type ModifierKey [4]string

// NormalizeModifiers maps an unordered modifier list onto the four slots of
// the lookup key: uppercased, deduplicated, sorted, empty slots last. Order
// on the wire is preserved elsewhere; the key only cares about the set.
func NormalizeModifiers(mods []string) ModifierKey {
	seen := make(map[string]bool, len(mods))
	var cleaned []string
	for _, m := range mods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		cleaned = append(cleaned, m)
	}
	sort.Strings(cleaned)

	var key ModifierKey
	for i := 0; i < len(cleaned) && i < 4; i++ {
		key[i] = cleaned[i]
	}
	return key
}

// Slice returns the occupied slots as a plain list.
func (k ModifierKey) Slice() []string {
	var out []string
	for _, m := range k {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
