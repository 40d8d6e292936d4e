package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var ReconcileAggregateContract = Contract{
	Name:             "Sync.ReconcileAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Replays one offline-captured session into the authoritative store idempotently, re-running finalize logic against current configuration.",
}

// Reconcile entry outcomes.
const (
	ReconcileApplied        = "applied"
	ReconcileAlreadyApplied = "already_applied"
	ReconcileConflict       = "conflict"
)

// ReconcileAggregate applies offline-originated sessions one entry per
// transaction so a conflicting entry never blocks the rest of a batch.
type ReconcileAggregate interface {
	Aggregate

	// ApplyEntry replays a single offline session. A previously applied
	// local ref reports CodeAlreadyApplied; dangling or deactivated
	// references report CodeConflict. Neither aborts the caller's batch.
	ApplyEntry(ctx context.Context, in ApplyEntryInput) (ApplyEntryResult, error)
}

type ApplyEntryInput struct {
	TenantID      uuid.UUID
	LocalRef      string
	JobID         uuid.UUID
	VehicleID     uuid.UUID
	DriverID      uuid.UUID
	CustomerID    uuid.UUID
	ProductID     uuid.UUID
	WeighbridgeID uuid.UUID
	TareKg        float64
	CapturedAt    time.Time
	Decks         []OfflineDeck
}

type OfflineDeck struct {
	DeckNumber int
	WeightKg   float64
}

type ApplyEntryResult struct {
	SessionID  uuid.UUID
	DocketNo   string
	GrossKg    float64
	NetKg      float64
	Overloaded bool
}
