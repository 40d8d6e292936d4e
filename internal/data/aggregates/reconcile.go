package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/engine/overload"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

type ReconcileAggregateDeps struct {
	Base BaseDeps

	Sessions     repos.SessionRepo
	DeckSamples  repos.DeckSampleRepo
	OverloadRecs repos.OverloadRecordRepo
	Reference    repos.ReferenceRepo
	AxleEntries  repos.AxleEntryRepo

	Authority domainagg.DocketAuthority
}

type reconcileAggregate struct {
	deps ReconcileAggregateDeps
}

func NewReconcileAggregate(deps ReconcileAggregateDeps) domainagg.ReconcileAggregate {
	deps.Base = deps.Base.withDefaults()
	return &reconcileAggregate{deps: deps}
}

func (a *reconcileAggregate) Contract() domainagg.Contract {
	return domainagg.ReconcileAggregateContract
}

func (a *reconcileAggregate) ApplyEntry(ctx context.Context, in domainagg.ApplyEntryInput) (domainagg.ApplyEntryResult, error) {
	const op = "Sync.Reconcile.ApplyEntry"
	var out domainagg.ApplyEntryResult

	if in.TenantID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id", nil)
	}
	if in.LocalRef == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing local_ref", nil)
	}
	if in.JobID == uuid.Nil || in.VehicleID == uuid.Nil || in.WeighbridgeID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "job_id, vehicle_id and weighbridge_id are required", nil)
	}
	if len(in.Decks) == 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "at least one deck reading is required", nil)
	}
	if in.TareKg < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "tare_kg must not be negative", nil)
	}
	seen := map[int]bool{}
	for _, d := range in.Decks {
		if d.DeckNumber < 1 {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "deck_number must be >= 1", nil)
		}
		if d.WeightKg < 0 {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "weight_kg must not be negative", nil)
		}
		if seen[d.DeckNumber] {
			return out, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("duplicate deck %d in entry", d.DeckNumber), nil)
		}
		seen[d.DeckNumber] = true
	}
	if a.deps.Sessions == nil || a.deps.DeckSamples == nil || a.deps.OverloadRecs == nil || a.deps.Reference == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "reconcile aggregate repos not configured", nil)
	}
	if a.deps.Authority == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "docket authority not configured", nil)
	}

	// Idempotency check before any writes. A replayed local ref reports the
	// session already on record instead of applying the entry twice.
	read := dbctx.Context{Ctx: ctx}
	if existing, err := a.deps.Sessions.GetByLocalRef(read, in.TenantID, in.LocalRef); err != nil {
		return out, MapError(op, err)
	} else if existing != nil {
		return a.alreadyApplied(op, existing)
	}

	if err := a.checkReferences(ctx, in, op); err != nil {
		return out, err
	}

	capturedAt := in.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		engineSamples := make([]overload.Sample, 0, len(in.Decks))
		for _, d := range in.Decks {
			engineSamples = append(engineSamples, overload.Sample{DeckNumber: d.DeckNumber, WeightKg: d.WeightKg})
		}
		res, err := a.evaluate(dbc, in.TenantID, in.VehicleID, engineSamples)
		if err != nil {
			return err
		}

		docketNo, err := a.deps.Authority.Issue(dbc.Ctx, in.TenantID)
		if err != nil {
			return domainagg.Wrap(domainagg.CodeNumberingUnavailable, op, err)
		}

		netKg := overload.NetWeight(res.GrossKg, in.TareKg)
		localRef := in.LocalRef
		sess := &types.WeighingSession{
			ID:            uuid.New(),
			TenantID:      in.TenantID,
			JobID:         in.JobID,
			VehicleID:     in.VehicleID,
			DriverID:      in.DriverID,
			CustomerID:    in.CustomerID,
			ProductID:     in.ProductID,
			WeighbridgeID: in.WeighbridgeID,
			Status:        types.SessionStatusFinalized,
			GrossKg:       res.GrossKg,
			TareKg:        in.TareKg,
			NetKg:         netKg,
			Overloaded:    res.Overloaded,
			DocketNo:      &docketNo,
			OfflineOrigin: true,
			LocalRef:      &localRef,
			CapturedAt:    capturedAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := a.deps.Sessions.Create(dbc, []*types.WeighingSession{sess}); err != nil {
			return err
		}

		resultByDeck := make(map[int]overload.AxleResult, len(res.Axles))
		for _, ar := range res.Axles {
			resultByDeck[ar.AxleNumber] = ar
		}
		rows := make([]*types.DeckSample, 0, len(in.Decks))
		for _, d := range in.Decks {
			row := &types.DeckSample{
				ID:         uuid.New(),
				SessionID:  sess.ID,
				DeckNumber: d.DeckNumber,
				WeightKg:   d.WeightKg,
				CreatedAt:  now,
			}
			if ar, ok := resultByDeck[d.DeckNumber]; ok && ar.Verified {
				row.AxleType = ar.AxleType
				row.MaxAllowedKg = ar.MaxAllowedKg
				row.Overloaded = ar.Overloaded
			}
			rows = append(rows, row)
		}
		if _, err := a.deps.DeckSamples.Create(dbc, rows); err != nil {
			return err
		}

		if res.Overloaded {
			raw, err := json.Marshal(offendingAxles(res))
			if err != nil {
				return err
			}
			rec := &types.OverloadRecord{
				ID:         uuid.New(),
				SessionID:  sess.ID,
				OverloadKg: res.OverloadKg,
				Axles:      datatypes.JSON(raw),
				CreatedAt:  now,
			}
			if _, err := a.deps.OverloadRecs.Create(dbc, []*types.OverloadRecord{rec}); err != nil {
				return err
			}
		}

		out = domainagg.ApplyEntryResult{
			SessionID:  sess.ID,
			DocketNo:   docketNo,
			GrossKg:    res.GrossKg,
			NetKg:      netKg,
			Overloaded: res.Overloaded,
		}
		return nil
	})
	if err != nil {
		// Two submissions may race past the pre-check; the unique index on
		// (tenant_id, local_ref) settles it. The loser re-reads the winner's row.
		if domainagg.IsCode(err, domainagg.CodeAlreadyApplied) {
			if existing, rerr := a.deps.Sessions.GetByLocalRef(read, in.TenantID, in.LocalRef); rerr == nil && existing != nil {
				return a.alreadyApplied(op, existing)
			}
		}
		return out, err
	}
	return out, nil
}

// checkReferences re-validates the entry's collaborators against current
// data. Offline captures can outlive a job or a vehicle record, and those
// entries surface as conflicts for a human rather than being auto-applied.
func (a *reconcileAggregate) checkReferences(ctx context.Context, in domainagg.ApplyEntryInput, op string) error {
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}

	g.Go(func() error {
		job, err := a.deps.Reference.GetJob(gdbc, in.TenantID, in.JobID)
		if err != nil {
			return err
		}
		if job == nil {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("job no longer exists: %s", in.JobID), nil)
		}
		if job.Status == types.JobStatusCancelled {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("job %s was cancelled after capture", in.JobID), nil)
		}
		return nil
	})
	g.Go(func() error {
		vehicle, err := a.deps.Reference.GetVehicle(gdbc, in.TenantID, in.VehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("vehicle no longer exists: %s", in.VehicleID), nil)
		}
		if !vehicle.Active {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("vehicle %s was deactivated after capture", in.VehicleID), nil)
		}
		return nil
	})
	g.Go(func() error {
		bridge, err := a.deps.Reference.GetWeighbridge(gdbc, in.TenantID, in.WeighbridgeID)
		if err != nil {
			return err
		}
		if bridge == nil {
			return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("weighbridge no longer exists: %s", in.WeighbridgeID), nil)
		}
		return nil
	})
	if in.DriverID != uuid.Nil {
		g.Go(func() error {
			driver, err := a.deps.Reference.GetDriver(gdbc, in.TenantID, in.DriverID)
			if err != nil {
				return err
			}
			if driver == nil {
				return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("driver no longer exists: %s", in.DriverID), nil)
			}
			return nil
		})
	}
	if in.CustomerID != uuid.Nil {
		g.Go(func() error {
			customer, err := a.deps.Reference.GetCustomer(gdbc, in.TenantID, in.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("customer no longer exists: %s", in.CustomerID), nil)
			}
			return nil
		})
	}
	if in.ProductID != uuid.Nil {
		g.Go(func() error {
			product, err := a.deps.Reference.GetProduct(gdbc, in.TenantID, in.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("product no longer exists: %s", in.ProductID), nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MapError(op, err)
	}
	return nil
}

func (a *reconcileAggregate) evaluate(dbc dbctx.Context, tenantID, vehicleID uuid.UUID, samples []overload.Sample) (overload.Result, error) {
	var entries []overload.ProfileEntry
	declared := 0
	if a.deps.AxleEntries != nil {
		rows, err := a.deps.AxleEntries.ListByVehicle(dbc, vehicleID)
		if err != nil {
			return overload.Result{}, err
		}
		for _, e := range rows {
			entries = append(entries, overload.ProfileEntry{
				AxleNumber:   e.AxleNumber,
				AxleType:     e.AxleType,
				MaxAllowedKg: e.MaxAllowedKg,
			})
		}
	}
	vehicle, err := a.deps.Reference.GetVehicle(dbc, tenantID, vehicleID)
	if err != nil {
		return overload.Result{}, err
	}
	if vehicle != nil {
		declared = vehicle.AxleCount
	}
	if declared == 0 {
		declared = len(entries)
	}
	return overload.Evaluate(declared, entries, samples), nil
}

func (a *reconcileAggregate) alreadyApplied(op string, sess *types.WeighingSession) (domainagg.ApplyEntryResult, error) {
	res := domainagg.ApplyEntryResult{
		SessionID:  sess.ID,
		GrossKg:    sess.GrossKg,
		NetKg:      sess.NetKg,
		Overloaded: sess.Overloaded,
	}
	if sess.DocketNo != nil {
		res.DocketNo = *sess.DocketNo
	}
	return res, domainagg.NewError(domainagg.CodeAlreadyApplied, op,
		fmt.Sprintf("local ref already applied: %s", *sess.LocalRef), nil)
}
