package x12

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medbill/medbill/internal/domain/sequence"
)

// Version identifiers fixed by the 837P implementation guide.
const (
	isaVersion = "00501"
	gsVersion  = "005010X222A1"
)

// Serializer renders claims as 837P interchanges. Control numbers come from
// the shared sequencer; everything else is a pure function of the claim and
// envelope.
type Serializer struct {
	env Envelope
	seq sequence.Sequencer
	now func() time.Time
}

func NewSerializer(env Envelope, seq sequence.Sequencer) *Serializer {
	return &Serializer{env: env, seq: seq, now: time.Now}
}

// Serialize produces the interchange text for one claim. The claim must
// carry at least one service line and one diagnosis; the pipeline guarantees
// both, so a violation here means a caller bug, not bad clinical data.
func (s *Serializer) Serialize(ctx context.Context, claim *Claim) (*Result, error) {
	if len(claim.Lines) == 0 {
		return nil, fmt.Errorf("serialize claim %s: no service lines", claim.ClaimID)
	}
	if len(claim.Diagnoses) == 0 {
		return nil, fmt.Errorf("serialize claim %s: no diagnoses", claim.ClaimID)
	}

	isa, err := s.seq.Next(ctx, sequence.Interchange)
	if err != nil {
		return nil, fmt.Errorf("interchange control number: %w", err)
	}
	gs, err := s.seq.Next(ctx, sequence.Group)
	if err != nil {
		return nil, fmt.Errorf("group control number: %w", err)
	}
	st, err := s.seq.Next(ctx, sequence.Transaction)
	if err != nil {
		return nil, fmt.Errorf("transaction control number: %w", err)
	}

	now := s.now().UTC()
	stID := sequence.FormatTransaction(st)

	var segments []string
	segments = append(segments, s.buildISA(isa, now))
	segments = append(segments, s.buildGS(gs, now))

	// Transaction set: every segment from ST through SE counts toward SE01.
	var tx []string
	tx = append(tx, seg("ST", "837", stID, gsVersion))
	tx = append(tx, seg("BHT", "0019", "00", Sanitize(claim.ClaimID), now.Format("20060102"), now.Format("1504"), "CH"))
	tx = append(tx, seg("NM1", "41", "2", s.orgName(s.env.SenderName), "", "", "", "", "46", Sanitize(s.env.SenderID)))
	tx = append(tx, seg("NM1", "40", "2", s.orgName(s.env.ReceiverName), "", "", "", "", "46", Sanitize(s.env.ReceiverID)))
	tx = append(tx, s.buildProviderLoop(&claim.Provider)...)
	tx = append(tx, s.buildSubscriberLoop(&claim.Subscriber)...)
	tx = append(tx, s.buildCLM(claim))
	tx = append(tx, seg("DTP", "472", "D8", claim.ServiceDate.Format("20060102")))
	tx = append(tx, buildHI(claim.Diagnoses))
	for _, line := range claim.Lines {
		tx = append(tx, buildLine(&line)...)
	}
	// SE counts itself.
	tx = append(tx, seg("SE", strconv.Itoa(len(tx)+1), stID))

	segments = append(segments, tx...)
	segments = append(segments, seg("GE", "1", sequence.FormatGroup(gs)))
	segments = append(segments, seg("IEA", "1", sequence.FormatInterchange(isa)))

	return &Result{
		Text:           strings.Join(segments, ""),
		ControlNumbers: ControlNumbers{ISA: isa, GS: gs, ST: st},
		SegmentCount:   len(tx),
		LineCount:      len(claim.Lines),
	}, nil
}

// buildISA writes the fixed-width interchange header. ISA is the only
// segment where element widths are mandatory, including the space padding
// of the authorization and security fields.
func (s *Serializer) buildISA(isa int64, now time.Time) string {
	usage := "T"
	if s.env.Production {
		usage = "P"
	}
	return seg("ISA",
		"00", strings.Repeat(" ", 10),
		"00", strings.Repeat(" ", 10),
		"ZZ", padRight(Sanitize(s.env.SenderID), 15),
		"ZZ", padRight(Sanitize(s.env.ReceiverID), 15),
		now.Format("060102"), now.Format("1504"),
		"^", isaVersion,
		sequence.FormatInterchange(isa),
		"0", usage, ":")
}

func (s *Serializer) buildGS(gs int64, now time.Time) string {
	return seg("GS", "HC",
		Sanitize(s.env.SenderID), Sanitize(s.env.ReceiverID),
		now.Format("20060102"), now.Format("1504"),
		sequence.FormatGroup(gs), "X", gsVersion)
}

func (s *Serializer) buildProviderLoop(p *Provider) []string {
	npi := Sanitize(p.NPI)
	if npi == "" {
		npi = FallbackNPI
	}

	out := []string{seg("HL", "1", "", "20", "1")}
	if tax := Sanitize(p.Taxonomy); tax != "" {
		out = append(out, seg("PRV", "BI", "PXC", tax))
	}
	out = append(out, seg("NM1", "85", "2", s.orgName(p.OrgName), "", "", "", "", "XX", npi))
	out = append(out, buildAddress(p.Address1, p.City, p.State, p.Zip)...)
	if tin := Sanitize(p.TaxID); tin != "" {
		out = append(out, seg("REF", "EI", tin))
	}
	return out
}

func (s *Serializer) buildSubscriberLoop(sub *Subscriber) []string {
	out := []string{
		seg("HL", "2", "1", "22", "0"),
		seg("SBR", "P", "18", Sanitize(sub.GroupNumber), "", "", "", "", "", "CI"),
		seg("NM1", "IL", "1", Sanitize(sub.LastName), Sanitize(sub.FirstName), "", "", "", "MI", Sanitize(sub.MemberID)),
	}
	out = append(out, buildAddress(sub.Address1, sub.City, sub.State, sub.Zip)...)

	dob := FallbackDOB
	if sub.BirthDate != nil {
		dob = sub.BirthDate.Format("20060102")
	}
	gender := "U"
	switch strings.ToLower(sub.Gender) {
	case "male", "m":
		gender = "M"
	case "female", "f":
		gender = "F"
	}
	out = append(out, seg("DMG", "D8", dob, gender))
	return out
}

func (s *Serializer) buildCLM(claim *Claim) string {
	pos := Sanitize(claim.PlaceOfService)
	if pos == "" {
		pos = "11"
	}
	freq := Sanitize(claim.FrequencyCode)
	if freq == "" {
		freq = "1"
	}
	facility := pos + ":B:" + freq
	return seg("CLM", Sanitize(claim.ClaimID), claim.TotalCharge.Dollars(), "", "", facility, "Y", "A", "Y", "Y")
}

// buildHI renders the diagnosis segment: BK qualifies the principal, BF each
// secondary, codes stripped of their decimal point.
func buildHI(diagnoses []string) string {
	elements := []string{"HI", "BK:" + StripDecimal(diagnoses[0])}
	for _, dx := range diagnoses[1:] {
		elements = append(elements, "BF:"+StripDecimal(dx))
	}
	return seg(elements...)
}

func buildLine(line *ServiceLine) []string {
	composite := "HC:" + Sanitize(line.ProcedureCode)
	for _, m := range line.Modifiers {
		if m = Sanitize(m); m != "" {
			composite += ":" + m
		}
	}

	units := line.Units
	if units <= 0 {
		units = 1
	}

	var pointers []string
	for _, p := range line.DiagnosisPointers {
		pointers = append(pointers, strconv.Itoa(p))
	}

	return []string{
		seg("LX", strconv.Itoa(line.Number)),
		seg("SV1", composite, line.Charge.Dollars(), "UN", strconv.Itoa(units), "", "", strings.Join(pointers, ":")),
	}
}

func buildAddress(addr1, city, state, zip string) []string {
	if Sanitize(addr1) == "" {
		return nil
	}
	return []string{
		seg("N3", Sanitize(addr1)),
		seg("N4", Sanitize(city), Sanitize(state), Sanitize(zip)),
	}
}

func (s *Serializer) orgName(name string) string {
	if n := Sanitize(name); n != "" {
		return n
	}
	return FallbackOrgName
}

// seg joins elements with the element separator and closes the segment with
// the terminator.
func seg(elements ...string) string {
	return strings.Join(elements, "*") + "~"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
