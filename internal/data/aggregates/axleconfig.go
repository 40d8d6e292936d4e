package aggregates

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

type AxleConfigAggregateDeps struct {
	Base BaseDeps

	Reference   repos.ReferenceRepo
	AxleEntries repos.AxleEntryRepo
}

type axleConfigAggregate struct {
	deps AxleConfigAggregateDeps
}

func NewAxleConfigAggregate(deps AxleConfigAggregateDeps) domainagg.AxleConfigAggregate {
	deps.Base = deps.Base.withDefaults()
	return &axleConfigAggregate{deps: deps}
}

func (a *axleConfigAggregate) Contract() domainagg.Contract {
	return domainagg.AxleConfigAggregateContract
}

func (a *axleConfigAggregate) GetProfile(ctx context.Context, tenantID, vehicleID uuid.UUID) (domainagg.AxleProfile, error) {
	const op = "Fleet.AxleConfig.GetProfile"
	var out domainagg.AxleProfile

	if tenantID == uuid.Nil || vehicleID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id or vehicle_id", nil)
	}
	if a.deps.Reference == nil || a.deps.AxleEntries == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "axle config aggregate repos not configured", nil)
	}

	dbc := dbctx.Context{Ctx: ctx}
	vehicle, err := a.deps.Reference.GetVehicle(dbc, tenantID, vehicleID)
	if err != nil {
		return out, MapError(op, err)
	}
	if vehicle == nil {
		return out, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("vehicle not found: %s", vehicleID), nil)
	}
	rows, err := a.deps.AxleEntries.ListByVehicle(dbc, vehicleID)
	if err != nil {
		return out, MapError(op, err)
	}
	out = domainagg.AxleProfile{
		VehicleID:     vehicle.ID,
		FleetNumber:   vehicle.FleetNumber,
		DeclaredAxles: vehicle.AxleCount,
	}
	for _, r := range rows {
		out.Entries = append(out.Entries, domainagg.AxleProfileEntry{
			AxleNumber:   r.AxleNumber,
			AxleType:     r.AxleType,
			MaxAllowedKg: r.MaxAllowedKg,
		})
	}
	return out, nil
}

func (a *axleConfigAggregate) ReplaceProfile(ctx context.Context, in domainagg.ReplaceProfileInput) (domainagg.AxleProfile, error) {
	const op = "Fleet.AxleConfig.ReplaceProfile"
	var out domainagg.AxleProfile

	if in.TenantID == uuid.Nil || in.VehicleID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id or vehicle_id", nil)
	}
	if len(in.Entries) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "at least one axle entry is required", nil)
	}
	if a.deps.Reference == nil || a.deps.AxleEntries == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "axle config aggregate repos not configured", nil)
	}

	entries := make([]domainagg.AxleProfileEntry, len(in.Entries))
	copy(entries, in.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].AxleNumber < entries[j].AxleNumber })

	seen := map[int]bool{}
	for i, e := range entries {
		if seen[e.AxleNumber] {
			return out, domainagg.NewError(domainagg.CodeConfigConflict, op, fmt.Sprintf("duplicate axle number %d", e.AxleNumber), nil)
		}
		seen[e.AxleNumber] = true
		if e.AxleNumber != i+1 {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "axle numbers must be contiguous from 1", nil)
		}
		if e.MaxAllowedKg < 0 {
			return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("axle %d max_allowed_kg must not be negative", e.AxleNumber), nil)
		}
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		vehicle, err := a.deps.Reference.GetVehicle(dbc, in.TenantID, in.VehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("vehicle not found: %s", in.VehicleID), nil)
		}
		if vehicle.AxleCount > 0 && len(entries) != vehicle.AxleCount {
			return domainagg.NewError(domainagg.CodeValidation, op,
				fmt.Sprintf("profile has %d axles, vehicle declares %d", len(entries), vehicle.AxleCount), nil)
		}

		rows := make([]*types.AxleEntry, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, &types.AxleEntry{
				ID:           uuid.New(),
				VehicleID:    in.VehicleID,
				AxleNumber:   e.AxleNumber,
				AxleType:     e.AxleType,
				MaxAllowedKg: e.MaxAllowedKg,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		if _, err := a.deps.AxleEntries.ReplaceForVehicle(dbc, in.VehicleID, rows); err != nil {
			return err
		}
		out = domainagg.AxleProfile{
			VehicleID:     vehicle.ID,
			FleetNumber:   vehicle.FleetNumber,
			DeclaredAxles: vehicle.AxleCount,
			Entries:       entries,
		}
		return nil
	})
	return out, err
}
