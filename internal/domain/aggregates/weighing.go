package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var WeighingAggregateContract = Contract{
	Name:             "Weighing.SessionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns the open -> weighing -> finalized|cancelled lifecycle; finalize is the single atomic state change that fixes weights, overload status and the docket number.",
}

// WeighingAggregate owns session lifecycle invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvalidJob, CodeDuplicateDeck,
// CodeSessionClosed, CodeNoWeightData, CodeNumberingUnavailable, CodeInternal.
type WeighingAggregate interface {
	Aggregate

	// OpenSession creates a session in the open state after validating the
	// job is active and all references exist.
	OpenSession(ctx context.Context, in OpenSessionInput) (OpenSessionResult, error)

	// RecordDeck records one deck sample; the first sample moves the session
	// from open to weighing.
	RecordDeck(ctx context.Context, in RecordDeckInput) (RecordDeckResult, error)

	// Finalize atomically fixes gross/tare/net, evaluates overload, issues a
	// docket number and flips the session to finalized.
	Finalize(ctx context.Context, in FinalizeInput) (FinalizeResult, error)

	// Cancel moves an open or weighing session to cancelled. No docket is
	// ever assigned on this path.
	Cancel(ctx context.Context, in CancelInput) (CancelResult, error)
}

type OpenSessionInput struct {
	TenantID      uuid.UUID
	JobID         uuid.UUID
	VehicleID     uuid.UUID
	DriverID      uuid.UUID
	CustomerID    uuid.UUID
	ProductID     uuid.UUID
	WeighbridgeID uuid.UUID

	// Optional transaction-level site overrides; job sites are the defaults.
	SourceSiteID      *uuid.UUID
	DestinationSiteID *uuid.UUID
}

type OpenSessionResult struct {
	SessionID uuid.UUID
	Status    string
	OpenedAt  time.Time
}

type RecordDeckInput struct {
	TenantID   uuid.UUID
	SessionID  uuid.UUID
	DeckNumber int
	WeightKg   float64
}

type RecordDeckResult struct {
	SessionID  uuid.UUID
	Status     string
	DeckNumber int
	GrossKg    float64
}

type FinalizeInput struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	TareKg    float64

	// ManualOverride permits finalizing from open with zero decks, for
	// fully-manual tare-only dockets.
	ManualOverride bool
}

type FinalizeResult struct {
	SessionID       uuid.UUID
	Status          string
	DocketNo        string
	GrossKg         float64
	TareKg          float64
	NetKg           float64
	Overloaded      bool
	OverloadKg      float64
	PartialWeighing bool
	UnverifiedAxles []int
	FinalizedAt     time.Time
}

type CancelInput struct {
	TenantID  uuid.UUID
	SessionID uuid.UUID
	Reason    string
}

type CancelResult struct {
	SessionID   uuid.UUID
	Status      string
	CancelledAt time.Time
}
