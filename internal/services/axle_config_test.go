package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
)

type fakeAxleConfigAggregate struct {
	lastReplace domainagg.ReplaceProfileInput
}

func (f *fakeAxleConfigAggregate) Contract() domainagg.Contract {
	return domainagg.AxleConfigAggregateContract
}

func (f *fakeAxleConfigAggregate) GetProfile(_ context.Context, _, vehicleID uuid.UUID) (domainagg.AxleProfile, error) {
	return domainagg.AxleProfile{VehicleID: vehicleID}, nil
}

func (f *fakeAxleConfigAggregate) ReplaceProfile(_ context.Context, in domainagg.ReplaceProfileInput) (domainagg.AxleProfile, error) {
	f.lastReplace = in
	return domainagg.AxleProfile{VehicleID: in.VehicleID, Entries: in.Entries}, nil
}

func TestAxleConfigServiceFillsDefaultsForOmittedLimits(t *testing.T) {
	agg := &fakeAxleConfigAggregate{}
	svc := NewAxleConfigService(testLogger(t), agg, map[string]float64{
		"steer": 6000,
		"drive": 10000,
	})

	_, err := svc.ReplaceProfile(context.Background(), domainagg.ReplaceProfileInput{
		TenantID:  uuid.New(),
		VehicleID: uuid.New(),
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "Steer"},
			{AxleNumber: 2, AxleType: "drive", MaxAllowedKg: 9500},
		},
	})
	if err != nil {
		t.Fatalf("ReplaceProfile: %v", err)
	}
	if got := agg.lastReplace.Entries[0].MaxAllowedKg; got != 6000 {
		t.Fatalf("axle 1 default: want=6000 got=%v", got)
	}
	// An explicit limit is never overwritten by the default.
	if got := agg.lastReplace.Entries[1].MaxAllowedKg; got != 9500 {
		t.Fatalf("axle 2 explicit: want=9500 got=%v", got)
	}
}

func TestAxleConfigServiceRejectsUnknownTypeWithoutLimit(t *testing.T) {
	svc := NewAxleConfigService(testLogger(t), &fakeAxleConfigAggregate{}, map[string]float64{})

	_, err := svc.ReplaceProfile(context.Background(), domainagg.ReplaceProfileInput{
		TenantID:  uuid.New(),
		VehicleID: uuid.New(),
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "tri-axle"},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got=%v", err)
	}
}

func TestLoadAxleLimits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "limits.yaml")
	raw := []byte("limits:\n  steer: 6000\n  Drive: 10000\n  bogus: -5\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write limits file: %v", err)
	}

	limits := LoadAxleLimits(testLogger(t), path)
	if len(limits) != 2 {
		t.Fatalf("limits: want=2 got=%d (%v)", len(limits), limits)
	}
	if limits["steer"] != 6000 {
		t.Fatalf("steer: got=%v", limits["steer"])
	}
	if limits["drive"] != 10000 {
		t.Fatalf("drive (case folded): got=%v", limits["drive"])
	}

	if got := LoadAxleLimits(testLogger(t), ""); len(got) != 0 {
		t.Fatalf("empty path should yield no defaults, got=%v", got)
	}
	if got := LoadAxleLimits(testLogger(t), filepath.Join(dir, "missing.yaml")); len(got) != 0 {
		t.Fatalf("missing file should yield no defaults, got=%v", got)
	}
}
