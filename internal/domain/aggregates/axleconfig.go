package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var AxleConfigAggregateContract = Contract{
	Name:             "Fleet.AxleConfigAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Replaces a vehicle's axle limit set atomically so readers never observe a partial profile.",
}

// AxleConfigAggregate owns vehicle axle-limit profiles.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConfigConflict, CodeInternal.
type AxleConfigAggregate interface {
	Aggregate

	// GetProfile returns the ordered axle set for a vehicle.
	GetProfile(ctx context.Context, tenantID, vehicleID uuid.UUID) (AxleProfile, error)

	// ReplaceProfile swaps the vehicle's full axle set in one transaction.
	ReplaceProfile(ctx context.Context, in ReplaceProfileInput) (AxleProfile, error)
}

type AxleProfile struct {
	VehicleID      uuid.UUID
	FleetNumber    string
	DeclaredAxles  int
	Entries        []AxleProfileEntry
}

type AxleProfileEntry struct {
	AxleNumber   int
	AxleType     string
	MaxAllowedKg float64
}

type ReplaceProfileInput struct {
	TenantID  uuid.UUID
	VehicleID uuid.UUID
	Entries   []AxleProfileEntry
}
