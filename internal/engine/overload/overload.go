// Package overload computes gross weight and per-axle overload status for one
// weighing. It is pure: callers supply the vehicle's axle limit entries and
// the recorded deck samples, and get back a result with no I/O involved.
package overload

import "sort"

// Sample is one recorded deck reading. Deck numbers map 1:1 onto axle numbers.
type Sample struct {
	DeckNumber int
	WeightKg   float64
}

// ProfileEntry is one axle's configured limit.
type ProfileEntry struct {
	AxleNumber   int
	AxleType     string
	MaxAllowedKg float64
}

// AxleResult is the per-axle evaluation outcome. Verified is false when the
// vehicle profile had no entry for the deck; such axles are never flagged.
type AxleResult struct {
	AxleNumber   int
	AxleType     string
	WeightKg     float64
	MaxAllowedKg float64
	OverKg       float64
	Overloaded   bool
	Verified     bool
}

// Result is the whole-vehicle evaluation outcome.
type Result struct {
	GrossKg         float64
	OverloadKg      float64
	Overloaded      bool
	Axles           []AxleResult
	UnverifiedAxles []int

	// PartialWeighing is set when fewer decks were recorded than the vehicle
	// declares axles. Advisory only; it never blocks a finalize.
	PartialWeighing bool
}

// GrossWeight folds deck samples into the gross weight. The gross total is
// always derived from samples, never stored as independent input.
func GrossWeight(samples []Sample) float64 {
	var gross float64
	for _, s := range samples {
		gross += s.WeightKg
	}
	return gross
}

// Evaluate compares deck samples against the vehicle's axle limits.
//
// An axle is overloaded only when its weight strictly exceeds the configured
// maximum; equality does not flag. Decks with no matching profile entry are
// skipped silently so an incomplete profile never blocks a finalize, but they
// are reported back as unverified. OverloadKg sums only positive excesses.
func Evaluate(declaredAxles int, entries []ProfileEntry, samples []Sample) Result {
	byAxle := make(map[int]ProfileEntry, len(entries))
	for _, e := range entries {
		byAxle[e.AxleNumber] = e
	}

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DeckNumber < sorted[j].DeckNumber })

	out := Result{
		GrossKg:         GrossWeight(sorted),
		PartialWeighing: declaredAxles > 0 && len(sorted) < declaredAxles,
	}
	for _, s := range sorted {
		ar := AxleResult{
			AxleNumber: s.DeckNumber,
			WeightKg:   s.WeightKg,
		}
		entry, ok := byAxle[s.DeckNumber]
		if !ok {
			out.UnverifiedAxles = append(out.UnverifiedAxles, s.DeckNumber)
			out.Axles = append(out.Axles, ar)
			continue
		}
		ar.Verified = true
		ar.AxleType = entry.AxleType
		ar.MaxAllowedKg = entry.MaxAllowedKg
		if s.WeightKg > entry.MaxAllowedKg {
			ar.Overloaded = true
			ar.OverKg = s.WeightKg - entry.MaxAllowedKg
			out.Overloaded = true
			out.OverloadKg += ar.OverKg
		}
		out.Axles = append(out.Axles, ar)
	}
	return out
}

// NetWeight derives net from gross and tare, floored at zero so a tare larger
// than the measured gross never produces a negative net.
func NetWeight(grossKg, tareKg float64) float64 {
	net := grossKg - tareKg
	if net < 0 {
		return 0
	}
	return net
}
