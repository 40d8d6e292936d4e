package aggregates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	fleetrepos "github.com/axleworks/weighbridge-backend/internal/data/repos/fleet"
	repotest "github.com/axleworks/weighbridge-backend/internal/data/repos/testutil"
	weighingrepos "github.com/axleworks/weighbridge-backend/internal/data/repos/weighing"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

type reconcileFixture struct {
	tenantID uuid.UUID
	job      *types.Job
	vehicle  *types.Vehicle
	bridge   *types.Weighbridge
	driver   *types.Driver
	customer *types.Customer
	product  *types.Product

	agg      domainagg.ReconcileAggregate
	sessions weighingrepos.SessionRepo
	samples  weighingrepos.DeckSampleRepo
}

func newReconcileFixture(t *testing.T, tx *gorm.DB) *reconcileFixture {
	t.Helper()
	ctx := context.Background()
	log := repotest.Logger(t)

	f := &reconcileFixture{tenantID: uuid.New()}
	f.job = repotest.SeedJob(t, ctx, tx, f.tenantID, types.JobStatusActive)
	f.vehicle = repotest.SeedVehicle(t, ctx, tx, f.tenantID, 2)
	f.bridge = repotest.SeedWeighbridge(t, ctx, tx, f.tenantID, "SITE7", 2)
	f.driver = repotest.SeedDriver(t, ctx, tx, f.tenantID)
	f.customer = repotest.SeedCustomer(t, ctx, tx, f.tenantID)
	f.product = repotest.SeedProduct(t, ctx, tx, f.tenantID)
	repotest.SeedAxleEntry(t, ctx, tx, f.vehicle.ID, 1, "steer", 6000)
	repotest.SeedAxleEntry(t, ctx, tx, f.vehicle.ID, 2, "drive", 10000)

	f.sessions = weighingrepos.NewSessionRepo(tx, log)
	f.samples = weighingrepos.NewDeckSampleRepo(tx, log)
	f.agg = NewReconcileAggregate(ReconcileAggregateDeps{
		Base: BaseDeps{
			DB:     tx,
			Log:    log,
			Runner: NewGormTxRunner(tx),
		},
		Sessions:     f.sessions,
		DeckSamples:  f.samples,
		OverloadRecs: weighingrepos.NewOverloadRecordRepo(tx, log),
		Reference:    fleetrepos.NewReferenceRepo(tx, log),
		AxleEntries:  fleetrepos.NewAxleEntryRepo(tx, log),
		Authority:    &seqAuthority{},
	})
	return f
}

func (f *reconcileFixture) entry(localRef string) domainagg.ApplyEntryInput {
	return domainagg.ApplyEntryInput{
		TenantID:      f.tenantID,
		LocalRef:      localRef,
		JobID:         f.job.ID,
		VehicleID:     f.vehicle.ID,
		DriverID:      f.driver.ID,
		CustomerID:    f.customer.ID,
		ProductID:     f.product.ID,
		WeighbridgeID: f.bridge.ID,
		TareKg:        7000,
		CapturedAt:    time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC),
		Decks: []domainagg.OfflineDeck{
			{DeckNumber: 1, WeightKg: 5800},
			{DeckNumber: 2, WeightKg: 10500},
		},
	}
}

func TestReconcileAggregateAppliesOfflineEntry(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newReconcileFixture(t, tx)
	ctx := context.Background()

	res, err := f.agg.ApplyEntry(ctx, f.entry("SITE7-00042"))
	if err != nil {
		t.Fatalf("ApplyEntry: %v", err)
	}
	if res.DocketNo == "" {
		t.Fatalf("applied entry should carry an authoritative docket")
	}
	if res.GrossKg != 16300 || res.NetKg != 9300 {
		t.Fatalf("weights: gross=%v net=%v", res.GrossKg, res.NetKg)
	}
	if !res.Overloaded {
		t.Fatalf("deck 2 exceeds its limit, entry should be overloaded")
	}

	sess, err := f.sessions.GetByLocalRef(dbctx.Context{Ctx: ctx}, f.tenantID, "SITE7-00042")
	if err != nil {
		t.Fatalf("GetByLocalRef: %v", err)
	}
	if sess == nil {
		t.Fatalf("session not persisted")
	}
	if sess.Status != types.SessionStatusFinalized {
		t.Fatalf("status: want=%s got=%s", types.SessionStatusFinalized, sess.Status)
	}
	if !sess.OfflineOrigin {
		t.Fatalf("offline_origin should be set")
	}
	if !sess.CapturedAt.Equal(time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("captured_at should keep the offline capture time, got=%v", sess.CapturedAt)
	}
	rows, err := f.samples.ListBySession(dbctx.Context{Ctx: ctx}, sess.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("samples: want=2 got=%d", len(rows))
	}
}

func TestReconcileAggregateIsIdempotent(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newReconcileFixture(t, tx)
	ctx := context.Background()

	first, err := f.agg.ApplyEntry(ctx, f.entry("SITE7-00042"))
	if err != nil {
		t.Fatalf("first ApplyEntry: %v", err)
	}

	second, err := f.agg.ApplyEntry(ctx, f.entry("SITE7-00042"))
	if err == nil {
		t.Fatalf("expected already_applied error")
	}
	if !domainagg.IsCode(err, domainagg.CodeAlreadyApplied) {
		t.Fatalf("expected already_applied code, got=%v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("replay should report the existing session: want=%s got=%s", first.SessionID, second.SessionID)
	}
	if second.DocketNo != first.DocketNo {
		t.Fatalf("replay must not issue a second docket: want=%s got=%s", first.DocketNo, second.DocketNo)
	}

	// Exactly one session row exists for the local ref.
	var n int64
	if err := tx.Model(&types.WeighingSession{}).
		Where("tenant_id = ? AND local_ref = ?", f.tenantID, "SITE7-00042").
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("session rows: want=1 got=%d", n)
	}
}

func TestReconcileAggregateReportsConflicts(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newReconcileFixture(t, tx)
	ctx := context.Background()

	t.Run("cancelled job", func(t *testing.T) {
		if err := tx.Model(&types.Job{}).Where("id = ?", f.job.ID).
			Update("status", types.JobStatusCancelled).Error; err != nil {
			t.Fatalf("cancel job: %v", err)
		}
		_, err := f.agg.ApplyEntry(ctx, f.entry("SITE7-00050"))
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if err := tx.Model(&types.Job{}).Where("id = ?", f.job.ID).
			Update("status", types.JobStatusActive).Error; err != nil {
			t.Fatalf("restore job: %v", err)
		}
	})

	t.Run("deactivated vehicle", func(t *testing.T) {
		if err := tx.Model(&types.Vehicle{}).Where("id = ?", f.vehicle.ID).
			Update("active", false).Error; err != nil {
			t.Fatalf("deactivate vehicle: %v", err)
		}
		_, err := f.agg.ApplyEntry(ctx, f.entry("SITE7-00051"))
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
	})

	t.Run("dangling reference", func(t *testing.T) {
		in := f.entry("SITE7-00052")
		in.VehicleID = uuid.New()
		_, err := f.agg.ApplyEntry(ctx, in)
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
	})

	// No sessions were written for any conflicted entry.
	var n int64
	if err := tx.Model(&types.WeighingSession{}).
		Where("tenant_id = ?", f.tenantID).
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("conflicted entries must not persist sessions, got=%d", n)
	}
}

func TestReconcileAggregateValidatesEntry(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newReconcileFixture(t, tx)
	ctx := context.Background()

	in := f.entry("SITE7-00060")
	in.Decks = nil
	if _, err := f.agg.ApplyEntry(ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("empty decks: expected validation, got=%v", err)
	}

	in = f.entry("SITE7-00061")
	in.Decks = append(in.Decks, domainagg.OfflineDeck{DeckNumber: 1, WeightKg: 100})
	if _, err := f.agg.ApplyEntry(ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("duplicate deck in entry: expected validation, got=%v", err)
	}

	in = f.entry("SITE7-00062")
	in.LocalRef = ""
	if _, err := f.agg.ApplyEntry(ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing local ref: expected validation, got=%v", err)
	}
}
