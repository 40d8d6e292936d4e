package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	fleetrepos "github.com/axleworks/weighbridge-backend/internal/data/repos/fleet"
	repotest "github.com/axleworks/weighbridge-backend/internal/data/repos/testutil"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
)

func TestAxleConfigAggregateReplaceAndGet(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	log := repotest.Logger(t)
	ctx := context.Background()

	tenantID := uuid.New()
	vehicle := repotest.SeedVehicle(t, ctx, tx, tenantID, 3)
	repotest.SeedAxleEntry(t, ctx, tx, vehicle.ID, 1, "steer", 5000)

	agg := NewAxleConfigAggregate(AxleConfigAggregateDeps{
		Base:        BaseDeps{DB: tx, Log: log, Runner: NewGormTxRunner(tx)},
		Reference:   fleetrepos.NewReferenceRepo(tx, log),
		AxleEntries: fleetrepos.NewAxleEntryRepo(tx, log),
	})

	profile, err := agg.ReplaceProfile(ctx, domainagg.ReplaceProfileInput{
		TenantID:  tenantID,
		VehicleID: vehicle.ID,
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "steer", MaxAllowedKg: 6000},
			{AxleNumber: 2, AxleType: "drive", MaxAllowedKg: 10000},
			{AxleNumber: 3, AxleType: "trailer", MaxAllowedKg: 9000},
		},
	})
	if err != nil {
		t.Fatalf("ReplaceProfile: %v", err)
	}
	if len(profile.Entries) != 3 {
		t.Fatalf("entries: want=3 got=%d", len(profile.Entries))
	}

	// The old single-axle profile is fully replaced, not merged.
	got, err := agg.GetProfile(ctx, tenantID, vehicle.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(got.Entries) != 3 {
		t.Fatalf("entries after replace: want=3 got=%d", len(got.Entries))
	}
	if got.Entries[0].MaxAllowedKg != 6000 {
		t.Fatalf("axle 1 limit: want=6000 got=%v", got.Entries[0].MaxAllowedKg)
	}
	if got.DeclaredAxles != 3 {
		t.Fatalf("declared axles: want=3 got=%d", got.DeclaredAxles)
	}
}

func TestAxleConfigAggregateRejectsBadProfiles(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	log := repotest.Logger(t)
	ctx := context.Background()

	tenantID := uuid.New()
	vehicle := repotest.SeedVehicle(t, ctx, tx, tenantID, 2)

	agg := NewAxleConfigAggregate(AxleConfigAggregateDeps{
		Base:        BaseDeps{DB: tx, Log: log, Runner: NewGormTxRunner(tx)},
		Reference:   fleetrepos.NewReferenceRepo(tx, log),
		AxleEntries: fleetrepos.NewAxleEntryRepo(tx, log),
	})

	_, err := agg.ReplaceProfile(ctx, domainagg.ReplaceProfileInput{
		TenantID:  tenantID,
		VehicleID: vehicle.ID,
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "steer", MaxAllowedKg: 6000},
			{AxleNumber: 1, AxleType: "drive", MaxAllowedKg: 10000},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeConfigConflict) {
		t.Fatalf("duplicate axle number: expected config_conflict, got=%v", err)
	}

	_, err = agg.ReplaceProfile(ctx, domainagg.ReplaceProfileInput{
		TenantID:  tenantID,
		VehicleID: vehicle.ID,
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "steer", MaxAllowedKg: 6000},
			{AxleNumber: 3, AxleType: "drive", MaxAllowedKg: 10000},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("gapped axle numbers: expected validation, got=%v", err)
	}

	_, err = agg.ReplaceProfile(ctx, domainagg.ReplaceProfileInput{
		TenantID:  tenantID,
		VehicleID: vehicle.ID,
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "steer", MaxAllowedKg: 6000},
			{AxleNumber: 2, AxleType: "drive", MaxAllowedKg: 10000},
			{AxleNumber: 3, AxleType: "trailer", MaxAllowedKg: 9000},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("count mismatch vs declared axles: expected validation, got=%v", err)
	}

	_, err = agg.ReplaceProfile(ctx, domainagg.ReplaceProfileInput{
		TenantID:  tenantID,
		VehicleID: uuid.New(),
		Entries: []domainagg.AxleProfileEntry{
			{AxleNumber: 1, AxleType: "steer", MaxAllowedKg: 6000},
			{AxleNumber: 2, AxleType: "drive", MaxAllowedKg: 10000},
		},
	})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown vehicle: expected not_found, got=%v", err)
	}

	if _, err := agg.GetProfile(ctx, tenantID, uuid.New()); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("GetProfile unknown vehicle: expected not_found, got=%v", err)
	}
}
