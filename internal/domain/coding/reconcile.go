package coding

import "sort"

// Reconcile merges candidate lists from every source into one code set.
//
// Per category the highest-priority source that populated it wins outright.
// Secondary diagnoses are the exception: sources lower in priority still
// contribute codes the winner did not propose (SDOH Z-codes ride along as
// extra secondary diagnoses), so that category is additive rather than
// winner-take-all. Identical (code, modifier-set) pairs are emitted once.
func Reconcile(candidates []CandidateCode) ReconciledCodeSet {
	byCat := make(map[Category][]CandidateCode)
	for _, c := range candidates {
		byCat[c.Category] = append(byCat[c.Category], c)
	}

	var out ReconciledCodeSet

	// Principal diagnosis: single winner.
	if winners := pickWinners(byCat[CategoryPrincipalDx]); len(winners) > 0 {
		best := winners[0]
		for _, w := range winners[1:] {
			if w.Confidence > best.Confidence {
				best = w
			}
		}
		out.Principal = Diagnosis{Code: best.Code, Rationale: best.Rationale, Source: best.Source}
	} else {
		out.Principal = fallbackPrincipal(byCat[CategorySecondaryDx])
	}

	// Secondary diagnoses: winner's set first, then additive codes from
	// lower-priority sources, highest priority first, stable within source.
	seen := map[string]bool{out.Principal.Code: true}
	for _, c := range byPriority(byCat[CategorySecondaryDx]) {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		out.Secondary = append(out.Secondary, Diagnosis{Code: c.Code, Rationale: c.Rationale, Source: c.Source})
	}

	// Procedures: the winning source's full set, deduplicated.
	procSeen := map[string]bool{}
	for _, c := range pickWinners(byCat[CategoryProcedure]) {
		if procSeen[c.Key()] {
			continue
		}
		procSeen[c.Key()] = true
		units := c.Units
		if units <= 0 {
			units = 1
		}
		out.Procedures = append(out.Procedures, Procedure{
			System:    c.System,
			Code:      c.Code,
			Modifiers: c.Modifiers,
			Units:     units,
			Rationale: c.Rationale,
			Source:    c.Source,
		})
	}

	return out
}

// pickWinners returns every candidate from the highest-priority source that
// populated the list, preserving input order.
func pickWinners(cands []CandidateCode) []CandidateCode {
	best := 0
	for _, c := range cands {
		if p := c.Source.Priority(); p > best {
			best = p
		}
	}
	if best == 0 {
		return nil
	}
	var winners []CandidateCode
	for _, c := range cands {
		if c.Source.Priority() == best {
			winners = append(winners, c)
		}
	}
	return winners
}

// byPriority orders candidates by descending source priority, keeping the
// original order within each source.
func byPriority(cands []CandidateCode) []CandidateCode {
	sorted := make([]CandidateCode, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Source.Priority() > sorted[j].Source.Priority()
	})
	return sorted
}

// fallbackPrincipal promotes the decision engine's best-confidence diagnosis
// when no source proposed a principal, falling back to the conservative
// default code when there is nothing to promote.
func fallbackPrincipal(secondaries []CandidateCode) Diagnosis {
	var best *CandidateCode
	for i := range secondaries {
		c := &secondaries[i]
		if c.Source != SourceDecisionEngine {
			continue
		}
		if best == nil || c.Confidence > best.Confidence {
			best = c
		}
	}
	if best != nil {
		return Diagnosis{Code: best.Code, Rationale: best.Rationale, Source: best.Source}
	}
	return Diagnosis{
		Code:      DefaultPrincipalDx,
		Rationale: "no diagnosis proposed by any source",
		Source:    SourceDefault,
	}
}
