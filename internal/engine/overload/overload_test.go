package overload

import "testing"

func TestEvaluateFlagsOnlyStrictExcess(t *testing.T) {
	entries := []ProfileEntry{
		{AxleNumber: 1, AxleType: "Steer", MaxAllowedKg: 6000},
		{AxleNumber: 2, AxleType: "Drive", MaxAllowedKg: 10000},
	}
	samples := []Sample{
		{DeckNumber: 1, WeightKg: 5800},
		{DeckNumber: 2, WeightKg: 10500},
	}

	res := Evaluate(2, entries, samples)
	if !res.Overloaded {
		t.Fatalf("overloaded: want=true got=false")
	}
	if res.OverloadKg != 500 {
		t.Fatalf("overload kg: want=500 got=%v", res.OverloadKg)
	}
	if res.GrossKg != 16300 {
		t.Fatalf("gross kg: want=16300 got=%v", res.GrossKg)
	}
	if len(res.Axles) != 2 {
		t.Fatalf("axle results: want=2 got=%d", len(res.Axles))
	}
	if res.Axles[0].Overloaded {
		t.Fatalf("steer axle flagged at 5800/6000")
	}
	if !res.Axles[1].Overloaded || res.Axles[1].OverKg != 500 {
		t.Fatalf("drive axle: want over=500 got=%+v", res.Axles[1])
	}
	if res.PartialWeighing {
		t.Fatalf("partial weighing flagged on a full weighing")
	}
}

func TestEvaluateEqualityNeverFlags(t *testing.T) {
	entries := []ProfileEntry{{AxleNumber: 1, AxleType: "Steer", MaxAllowedKg: 6000}}
	samples := []Sample{{DeckNumber: 1, WeightKg: 6000}}

	res := Evaluate(1, entries, samples)
	if res.Overloaded {
		t.Fatalf("weight equal to limit must not flag")
	}
	if res.OverloadKg != 0 {
		t.Fatalf("overload kg: want=0 got=%v", res.OverloadKg)
	}
}

func TestEvaluateSkipsUnconfiguredAxles(t *testing.T) {
	entries := []ProfileEntry{{AxleNumber: 1, AxleType: "Steer", MaxAllowedKg: 6000}}
	samples := []Sample{
		{DeckNumber: 1, WeightKg: 5000},
		{DeckNumber: 2, WeightKg: 99999},
	}

	res := Evaluate(2, entries, samples)
	if res.Overloaded {
		t.Fatalf("unverified axle must never flag the vehicle")
	}
	if len(res.UnverifiedAxles) != 1 || res.UnverifiedAxles[0] != 2 {
		t.Fatalf("unverified axles: want=[2] got=%v", res.UnverifiedAxles)
	}
	if res.Axles[1].Verified {
		t.Fatalf("axle 2 reported verified without a profile entry")
	}
}

func TestEvaluatePartialWeighingWarning(t *testing.T) {
	entries := []ProfileEntry{
		{AxleNumber: 1, AxleType: "Steer", MaxAllowedKg: 6000},
		{AxleNumber: 2, AxleType: "Drive", MaxAllowedKg: 10000},
		{AxleNumber: 3, AxleType: "Trailer", MaxAllowedKg: 9000},
	}
	samples := []Sample{{DeckNumber: 1, WeightKg: 5000}}

	res := Evaluate(3, entries, samples)
	if !res.PartialWeighing {
		t.Fatalf("partial weighing: want=true got=false")
	}
	if res.Overloaded {
		t.Fatalf("partial weighing alone must not flag overload")
	}
}

func TestEvaluateSumsOnlyPositiveContributions(t *testing.T) {
	entries := []ProfileEntry{
		{AxleNumber: 1, AxleType: "Steer", MaxAllowedKg: 6000},
		{AxleNumber: 2, AxleType: "Drive", MaxAllowedKg: 10000},
		{AxleNumber: 3, AxleType: "Trailer", MaxAllowedKg: 9000},
	}
	samples := []Sample{
		{DeckNumber: 1, WeightKg: 1000},
		{DeckNumber: 2, WeightKg: 10200},
		{DeckNumber: 3, WeightKg: 9300},
	}

	res := Evaluate(3, entries, samples)
	if res.OverloadKg != 500 {
		t.Fatalf("overload kg: want=500 got=%v (underloaded axles must not offset)", res.OverloadKg)
	}
}

func TestGrossWeightMatchesSampleSum(t *testing.T) {
	samples := []Sample{
		{DeckNumber: 1, WeightKg: 1200.5},
		{DeckNumber: 2, WeightKg: 800.25},
		{DeckNumber: 3, WeightKg: 0},
	}
	if got := GrossWeight(samples); got != 2000.75 {
		t.Fatalf("gross: want=2000.75 got=%v", got)
	}
	if got := GrossWeight(nil); got != 0 {
		t.Fatalf("gross of no samples: want=0 got=%v", got)
	}
}

func TestNetWeightFloorsAtZero(t *testing.T) {
	if got := NetWeight(16300, 7000); got != 9300 {
		t.Fatalf("net: want=9300 got=%v", got)
	}
	if got := NetWeight(100, 500); got != 0 {
		t.Fatalf("net floor: want=0 got=%v", got)
	}
	if got := NetWeight(100, 0); got != 100 {
		t.Fatalf("net with zero tare: want=100 got=%v", got)
	}
}
