package aggregates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/engine/overload"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

type WeighingAggregateDeps struct {
	Base BaseDeps

	Sessions     repos.SessionRepo
	DeckSamples  repos.DeckSampleRepo
	OverloadRecs repos.OverloadRecordRepo
	Reference    repos.ReferenceRepo
	AxleEntries  repos.AxleEntryRepo

	Authority domainagg.DocketAuthority
}

type weighingAggregate struct {
	deps WeighingAggregateDeps
}

func NewWeighingAggregate(deps WeighingAggregateDeps) domainagg.WeighingAggregate {
	deps.Base = deps.Base.withDefaults()
	return &weighingAggregate{deps: deps}
}

func (a *weighingAggregate) Contract() domainagg.Contract {
	return domainagg.WeighingAggregateContract
}

func (a *weighingAggregate) OpenSession(ctx context.Context, in domainagg.OpenSessionInput) (domainagg.OpenSessionResult, error) {
	const op = "Weighing.Session.Open"
	var out domainagg.OpenSessionResult

	if in.TenantID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id", nil)
	}
	if in.JobID == uuid.Nil || in.VehicleID == uuid.Nil || in.WeighbridgeID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "job_id, vehicle_id and weighbridge_id are required", nil)
	}
	if a.deps.Sessions == nil || a.deps.Reference == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "weighing aggregate repos not configured", nil)
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		job, err := a.deps.Reference.GetJob(dbc, in.TenantID, in.JobID)
		if err != nil {
			return err
		}
		if job == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("job not found: %s", in.JobID), nil)
		}
		if job.Status != types.JobStatusActive {
			return domainagg.NewError(domainagg.CodeInvalidJob, op, fmt.Sprintf("job %s is %s, not active", in.JobID, job.Status), nil)
		}
		if err := a.requireReferences(dbc, in.TenantID, in.VehicleID, in.DriverID, in.CustomerID, in.ProductID, in.WeighbridgeID, op); err != nil {
			return err
		}

		// Transaction-level site values override the job's defaults.
		sourceSite := in.SourceSiteID
		if sourceSite == nil {
			sourceSite = job.SourceSiteID
		}
		destSite := in.DestinationSiteID
		if destSite == nil {
			destSite = job.DestinationSiteID
		}

		row := &types.WeighingSession{
			ID:                uuid.New(),
			TenantID:          in.TenantID,
			JobID:             in.JobID,
			VehicleID:         in.VehicleID,
			DriverID:          in.DriverID,
			CustomerID:        in.CustomerID,
			ProductID:         in.ProductID,
			WeighbridgeID:     in.WeighbridgeID,
			Status:            types.SessionStatusOpen,
			SourceSiteID:      sourceSite,
			DestinationSiteID: destSite,
			CapturedAt:        now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := a.deps.Sessions.Create(dbc, []*types.WeighingSession{row}); err != nil {
			return err
		}
		out = domainagg.OpenSessionResult{
			SessionID: row.ID,
			Status:    row.Status,
			OpenedAt:  now,
		}
		return nil
	})
	return out, err
}

func (a *weighingAggregate) RecordDeck(ctx context.Context, in domainagg.RecordDeckInput) (domainagg.RecordDeckResult, error) {
	const op = "Weighing.Session.RecordDeck"
	var out domainagg.RecordDeckResult

	if in.TenantID == uuid.Nil || in.SessionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id or session_id", nil)
	}
	if in.DeckNumber < 1 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "deck_number must be >= 1", nil)
	}
	if in.WeightKg < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "weight_kg must not be negative", nil)
	}
	if a.deps.Sessions == nil || a.deps.DeckSamples == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "weighing aggregate repos not configured", nil)
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sess, err := a.deps.Sessions.LockByID(dbc, in.TenantID, in.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("session not found: %s", in.SessionID), nil)
		}
		if types.SessionStatusTerminal(sess.Status) {
			return domainagg.NewError(domainagg.CodeSessionClosed, op, fmt.Sprintf("session is %s", sess.Status), nil)
		}

		// Snapshot the matching axle limit at capture time; the profile may
		// change before finalize and the sample keeps what the operator saw.
		var axleType string
		var maxAllowed float64
		if a.deps.AxleEntries != nil {
			entries, err := a.deps.AxleEntries.ListByVehicle(dbc, sess.VehicleID)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.AxleNumber == in.DeckNumber {
					axleType = e.AxleType
					maxAllowed = e.MaxAllowedKg
					break
				}
			}
		}

		sample := &types.DeckSample{
			ID:           uuid.New(),
			SessionID:    sess.ID,
			DeckNumber:   in.DeckNumber,
			WeightKg:     in.WeightKg,
			AxleType:     axleType,
			MaxAllowedKg: maxAllowed,
			CreatedAt:    now,
		}
		if _, err := a.deps.DeckSamples.Create(dbc, []*types.DeckSample{sample}); err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": now}
		status := sess.Status
		if status == types.SessionStatusOpen {
			status = types.SessionStatusWeighing
			updates["status"] = status
		}
		if err := a.deps.Sessions.UpdateFields(dbc, sess.ID, updates); err != nil {
			return err
		}

		samples, err := a.deps.DeckSamples.ListBySession(dbc, sess.ID)
		if err != nil {
			return err
		}
		out = domainagg.RecordDeckResult{
			SessionID:  sess.ID,
			Status:     status,
			DeckNumber: in.DeckNumber,
			GrossKg:    overload.GrossWeight(toEngineSamples(samples)),
		}
		return nil
	})
	return out, err
}

func (a *weighingAggregate) Finalize(ctx context.Context, in domainagg.FinalizeInput) (domainagg.FinalizeResult, error) {
	const op = "Weighing.Session.Finalize"
	var out domainagg.FinalizeResult

	if in.TenantID == uuid.Nil || in.SessionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id or session_id", nil)
	}
	if in.TareKg < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "tare_kg must not be negative", nil)
	}
	if a.deps.Sessions == nil || a.deps.DeckSamples == nil || a.deps.OverloadRecs == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "weighing aggregate repos not configured", nil)
	}
	if a.deps.Authority == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "docket authority not configured", nil)
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sess, err := a.deps.Sessions.LockByID(dbc, in.TenantID, in.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("session not found: %s", in.SessionID), nil)
		}
		switch sess.Status {
		case types.SessionStatusFinalized, types.SessionStatusCancelled:
			return domainagg.NewError(domainagg.CodeSessionClosed, op, fmt.Sprintf("session is %s", sess.Status), nil)
		case types.SessionStatusOpen:
			// A session still open has recorded no decks. Only the documented
			// tare-only manual override may finalize it.
			if !in.ManualOverride {
				return domainagg.NewError(domainagg.CodeNoWeightData, op, "no deck weights recorded", nil)
			}
		}

		samples, err := a.deps.DeckSamples.ListBySession(dbc, sess.ID)
		if err != nil {
			return err
		}
		if len(samples) == 0 && !in.ManualOverride {
			return domainagg.NewError(domainagg.CodeNoWeightData, op, "no deck weights recorded", nil)
		}

		res, err := a.evaluate(dbc, sess.TenantID, sess.VehicleID, samples)
		if err != nil {
			return err
		}

		docketNo, err := a.deps.Authority.Issue(dbc.Ctx, in.TenantID)
		if err != nil {
			return domainagg.Wrap(domainagg.CodeNumberingUnavailable, op, err)
		}

		resultByDeck := make(map[int]overload.AxleResult, len(res.Axles))
		for _, ar := range res.Axles {
			resultByDeck[ar.AxleNumber] = ar
		}
		for _, s := range samples {
			ar, ok := resultByDeck[s.DeckNumber]
			if !ok || !ar.Verified {
				continue
			}
			if err := a.deps.DeckSamples.UpdateFields(dbc, s.ID, map[string]interface{}{
				"overloaded":     ar.Overloaded,
				"axle_type":      ar.AxleType,
				"max_allowed_kg": ar.MaxAllowedKg,
			}); err != nil {
				return err
			}
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

		netKg := overload.NetWeight(res.GrossKg, in.TareKg)
		if err := a.deps.Sessions.UpdateFields(dbc, sess.ID, map[string]interface{}{
			"status":     types.SessionStatusFinalized,
			"gross_kg":   res.GrossKg,
			"tare_kg":    in.TareKg,
			"net_kg":     netKg,
			"overloaded": res.Overloaded,
			"docket_no":  docketNo,
			"updated_at": now,
		}); err != nil {
			return err
		}

		out = domainagg.FinalizeResult{
			SessionID:       sess.ID,
			Status:          types.SessionStatusFinalized,
			DocketNo:        docketNo,
			GrossKg:         res.GrossKg,
			TareKg:          in.TareKg,
			NetKg:           netKg,
			Overloaded:      res.Overloaded,
			OverloadKg:      res.OverloadKg,
			PartialWeighing: res.PartialWeighing,
			UnverifiedAxles: res.UnverifiedAxles,
			FinalizedAt:     now,
		}
		return nil
	})
	return out, err
}

func (a *weighingAggregate) Cancel(ctx context.Context, in domainagg.CancelInput) (domainagg.CancelResult, error) {
	const op = "Weighing.Session.Cancel"
	var out domainagg.CancelResult

	if in.TenantID == uuid.Nil || in.SessionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tenant_id or session_id", nil)
	}
	if a.deps.Sessions == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "weighing aggregate repos not configured", nil)
	}

	now := time.Now().UTC()
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sess, err := a.deps.Sessions.LockByID(dbc, in.TenantID, in.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("session not found: %s", in.SessionID), nil)
		}
		if types.SessionStatusTerminal(sess.Status) {
			return domainagg.NewError(domainagg.CodeSessionClosed, op, fmt.Sprintf("session is %s", sess.Status), nil)
		}
		if err := a.deps.Sessions.UpdateFields(dbc, sess.ID, map[string]interface{}{
			"status":        types.SessionStatusCancelled,
			"cancel_reason": in.Reason,
			"updated_at":    now,
		}); err != nil {
			return err
		}
		out = domainagg.CancelResult{
			SessionID:   sess.ID,
			Status:      types.SessionStatusCancelled,
			CancelledAt: now,
		}
		return nil
	})
	return out, err
}

// evaluate runs the overload engine against the vehicle's current profile.
func (a *weighingAggregate) evaluate(dbc dbctx.Context, tenantID, vehicleID uuid.UUID, samples []*types.DeckSample) (overload.Result, error) {
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
	if a.deps.Reference != nil {
		// Declared axle count comes from the vehicle record, not the profile;
		// an incomplete profile still yields a partial-weighing warning.
		vehicle, err := a.deps.Reference.GetVehicle(dbc, tenantID, vehicleID)
		if err != nil {
			return overload.Result{}, err
		}
		if vehicle != nil {
			declared = vehicle.AxleCount
		}
	}
	if declared == 0 {
		declared = len(entries)
	}
	return overload.Evaluate(declared, entries, toEngineSamples(samples)), nil
}

func toEngineSamples(rows []*types.DeckSample) []overload.Sample {
	out := make([]overload.Sample, 0, len(rows))
	for _, r := range rows {
		out = append(out, overload.Sample{DeckNumber: r.DeckNumber, WeightKg: r.WeightKg})
	}
	return out
}

func offendingAxles(res overload.Result) []types.OffendingAxle {
	var out []types.OffendingAxle
	for _, ar := range res.Axles {
		if !ar.Overloaded {
			continue
		}
		out = append(out, types.OffendingAxle{
			AxleNumber:   ar.AxleNumber,
			AxleType:     ar.AxleType,
			WeightKg:     ar.WeightKg,
			MaxAllowedKg: ar.MaxAllowedKg,
			OverKg:       ar.OverKg,
		})
	}
	return out
}

func (a *weighingAggregate) requireReferences(dbc dbctx.Context, tenantID, vehicleID, driverID, customerID, productID, weighbridgeID uuid.UUID, op string) error {
	vehicle, err := a.deps.Reference.GetVehicle(dbc, tenantID, vehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("vehicle not found: %s", vehicleID), nil)
	}
	if !vehicle.Active {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("vehicle %s is deactivated", vehicleID), nil)
	}
	if driverID != uuid.Nil {
		driver, err := a.deps.Reference.GetDriver(dbc, tenantID, driverID)
		if err != nil {
			return err
		}
		if driver == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("driver not found: %s", driverID), nil)
		}
		if !driver.Active {
			return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("driver %s is deactivated", driverID), nil)
		}
	}
	if customerID != uuid.Nil {
		customer, err := a.deps.Reference.GetCustomer(dbc, tenantID, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("customer not found: %s", customerID), nil)
		}
		if !customer.Active {
			return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("customer %s is deactivated", customerID), nil)
		}
	}
	if productID != uuid.Nil {
		product, err := a.deps.Reference.GetProduct(dbc, tenantID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("product not found: %s", productID), nil)
		}
		if !product.Active {
			return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("product %s is deactivated", productID), nil)
		}
	}
	bridge, err := a.deps.Reference.GetWeighbridge(dbc, tenantID, weighbridgeID)
	if err != nil {
		return err
	}
	if bridge == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("weighbridge not found: %s", weighbridgeID), nil)
	}
	if !bridge.Active {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("weighbridge %s is deactivated", weighbridgeID), nil)
	}
	return nil
}
