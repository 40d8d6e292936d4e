package aggregates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	fleetrepos "github.com/axleworks/weighbridge-backend/internal/data/repos/fleet"
	repotest "github.com/axleworks/weighbridge-backend/internal/data/repos/testutil"
	weighingrepos "github.com/axleworks/weighbridge-backend/internal/data/repos/weighing"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

type seqAuthority struct {
	mu   sync.Mutex
	next int64
	fail error
}

func (a *seqAuthority) Issue(_ context.Context, _ uuid.UUID) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return "", a.fail
	}
	a.next++
	return fmt.Sprintf("WB-2026-%06d", a.next), nil
}

type weighingFixture struct {
	tenantID uuid.UUID
	job      *types.Job
	vehicle  *types.Vehicle
	bridge   *types.Weighbridge
	driver   *types.Driver
	customer *types.Customer
	product  *types.Product

	agg       domainagg.WeighingAggregate
	sessions  weighingrepos.SessionRepo
	samples   weighingrepos.DeckSampleRepo
	overloads weighingrepos.OverloadRecordRepo
	authority *seqAuthority
}

func newWeighingFixture(t *testing.T, tx *gorm.DB) *weighingFixture {
	t.Helper()
	ctx := context.Background()
	log := repotest.Logger(t)

	f := &weighingFixture{tenantID: uuid.New(), authority: &seqAuthority{}}
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
	f.overloads = weighingrepos.NewOverloadRecordRepo(tx, log)
	f.agg = NewWeighingAggregate(WeighingAggregateDeps{
		Base: BaseDeps{
			DB:     tx,
			Log:    log,
			Runner: NewGormTxRunner(tx),
		},
		Sessions:     f.sessions,
		DeckSamples:  f.samples,
		OverloadRecs: f.overloads,
		Reference:    fleetrepos.NewReferenceRepo(tx, log),
		AxleEntries:  fleetrepos.NewAxleEntryRepo(tx, log),
		Authority:    f.authority,
	})
	return f
}

func (f *weighingFixture) openInput() domainagg.OpenSessionInput {
	return domainagg.OpenSessionInput{
		TenantID:      f.tenantID,
		JobID:         f.job.ID,
		VehicleID:     f.vehicle.ID,
		DriverID:      f.driver.ID,
		CustomerID:    f.customer.ID,
		ProductID:     f.product.ID,
		WeighbridgeID: f.bridge.ID,
	}
}

func TestWeighingAggregateLifecycle(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	opened, err := f.agg.OpenSession(ctx, f.openInput())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if opened.Status != types.SessionStatusOpen {
		t.Fatalf("opened status: want=%s got=%s", types.SessionStatusOpen, opened.Status)
	}

	rec1, err := f.agg.RecordDeck(ctx, domainagg.RecordDeckInput{
		TenantID:   f.tenantID,
		SessionID:  opened.SessionID,
		DeckNumber: 1,
		WeightKg:   5800,
	})
	if err != nil {
		t.Fatalf("RecordDeck 1: %v", err)
	}
	if rec1.Status != types.SessionStatusWeighing {
		t.Fatalf("first deck should flip status to weighing, got=%s", rec1.Status)
	}
	if rec1.GrossKg != 5800 {
		t.Fatalf("gross after deck 1: want=5800 got=%v", rec1.GrossKg)
	}

	rec2, err := f.agg.RecordDeck(ctx, domainagg.RecordDeckInput{
		TenantID:   f.tenantID,
		SessionID:  opened.SessionID,
		DeckNumber: 2,
		WeightKg:   10500,
	})
	if err != nil {
		t.Fatalf("RecordDeck 2: %v", err)
	}
	if rec2.GrossKg != 16300 {
		t.Fatalf("gross after deck 2: want=16300 got=%v", rec2.GrossKg)
	}

	fin, err := f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID:  f.tenantID,
		SessionID: opened.SessionID,
		TareKg:    7000,
	})
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if fin.Status != types.SessionStatusFinalized {
		t.Fatalf("finalized status: want=%s got=%s", types.SessionStatusFinalized, fin.Status)
	}
	if fin.DocketNo != "WB-2026-000001" {
		t.Fatalf("docket: want=WB-2026-000001 got=%s", fin.DocketNo)
	}
	if fin.GrossKg != 16300 || fin.NetKg != 9300 {
		t.Fatalf("weights: gross=%v net=%v", fin.GrossKg, fin.NetKg)
	}
	// Deck 2 exceeds its 10000 limit by 500; deck 1 is under. Only positive
	// excesses count.
	if !fin.Overloaded || fin.OverloadKg != 500 {
		t.Fatalf("overload: overloaded=%v kg=%v", fin.Overloaded, fin.OverloadKg)
	}

	sess, err := f.sessions.GetByID(dbctx.Context{Ctx: ctx}, f.tenantID, opened.SessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sess == nil || sess.Status != types.SessionStatusFinalized {
		t.Fatalf("persisted session: %+v", sess)
	}
	if sess.DocketNo == nil || *sess.DocketNo != fin.DocketNo {
		t.Fatalf("persisted docket: %+v", sess.DocketNo)
	}

	rec, err := f.overloads.GetBySession(dbctx.Context{Ctx: ctx}, opened.SessionID)
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if rec == nil || rec.OverloadKg != 500 {
		t.Fatalf("overload record: %+v", rec)
	}

	rows, err := f.samples.ListBySession(dbctx.Context{Ctx: ctx}, opened.SessionID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	for _, row := range rows {
		switch row.DeckNumber {
		case 1:
			if row.Overloaded {
				t.Fatalf("deck 1 should not be flagged")
			}
		case 2:
			if !row.Overloaded {
				t.Fatalf("deck 2 should be flagged")
			}
		}
	}
}

func TestWeighingAggregateOpenRejectsInactiveJob(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	if err := tx.Model(&types.Job{}).Where("id = ?", f.job.ID).
		Update("status", types.JobStatusCompleted).Error; err != nil {
		t.Fatalf("complete job: %v", err)
	}

	_, err := f.agg.OpenSession(ctx, f.openInput())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeInvalidJob) {
		t.Fatalf("expected invalid_job code, got=%v", err)
	}

	in := f.openInput()
	in.JobID = uuid.New()
	_, err = f.agg.OpenSession(ctx, in)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found for unknown job, got=%v", err)
	}
}

func TestWeighingAggregateDuplicateDeck(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	opened, err := f.agg.OpenSession(ctx, f.openInput())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	in := domainagg.RecordDeckInput{
		TenantID:   f.tenantID,
		SessionID:  opened.SessionID,
		DeckNumber: 1,
		WeightKg:   5800,
	}
	if _, err := f.agg.RecordDeck(ctx, in); err != nil {
		t.Fatalf("RecordDeck: %v", err)
	}
	in.WeightKg = 5900
	_, err = f.agg.RecordDeck(ctx, in)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeDuplicateDeck) {
		t.Fatalf("expected duplicate_deck code, got=%v", err)
	}

	// The first reading is untouched.
	rows, err := f.samples.ListBySession(dbctx.Context{Ctx: ctx}, opened.SessionID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(rows) != 1 || rows[0].WeightKg != 5800 {
		t.Fatalf("samples after duplicate: %+v", rows)
	}
}

func TestWeighingAggregateFinalizeRequiresWeightData(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	opened, err := f.agg.OpenSession(ctx, f.openInput())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	_, err = f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID:  f.tenantID,
		SessionID: opened.SessionID,
		TareKg:    7000,
	})
	if !domainagg.IsCode(err, domainagg.CodeNoWeightData) {
		t.Fatalf("expected no_weight_data code, got=%v", err)
	}

	fin, err := f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID:       f.tenantID,
		SessionID:      opened.SessionID,
		TareKg:         7000,
		ManualOverride: true,
	})
	if err != nil {
		t.Fatalf("Finalize with override: %v", err)
	}
	if fin.GrossKg != 0 || fin.NetKg != 0 {
		t.Fatalf("override weights: gross=%v net=%v", fin.GrossKg, fin.NetKg)
	}
	if fin.DocketNo == "" {
		t.Fatalf("override finalize should still issue a docket")
	}
}

func TestWeighingAggregateFinalizeIsTerminal(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	opened, err := f.agg.OpenSession(ctx, f.openInput())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if _, err := f.agg.RecordDeck(ctx, domainagg.RecordDeckInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, DeckNumber: 1, WeightKg: 5000,
	}); err != nil {
		t.Fatalf("RecordDeck: %v", err)
	}
	if _, err := f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, TareKg: 3000,
	}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	_, err = f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, TareKg: 3000,
	})
	if !domainagg.IsCode(err, domainagg.CodeSessionClosed) {
		t.Fatalf("re-finalize: expected session_closed, got=%v", err)
	}
	_, err = f.agg.RecordDeck(ctx, domainagg.RecordDeckInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, DeckNumber: 2, WeightKg: 4000,
	})
	if !domainagg.IsCode(err, domainagg.CodeSessionClosed) {
		t.Fatalf("record after finalize: expected session_closed, got=%v", err)
	}
	_, err = f.agg.Cancel(ctx, domainagg.CancelInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, Reason: "mistake",
	})
	if !domainagg.IsCode(err, domainagg.CodeSessionClosed) {
		t.Fatalf("cancel after finalize: expected session_closed, got=%v", err)
	}
}

func TestWeighingAggregateFinalizeRollsBackWhenNumberingFails(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	opened, err := f.agg.OpenSession(ctx, f.openInput())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	if _, err := f.agg.RecordDeck(ctx, domainagg.RecordDeckInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, DeckNumber: 1, WeightKg: 5000,
	}); err != nil {
		t.Fatalf("RecordDeck: %v", err)
	}

	f.authority.fail = errors.New("allocator unreachable")
	_, err = f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, TareKg: 3000,
	})
	if !domainagg.IsCode(err, domainagg.CodeNumberingUnavailable) {
		t.Fatalf("expected numbering_unavailable, got=%v", err)
	}

	// The failed finalize rolled back: the session is still weighing with no
	// docket and can be finalized once numbering recovers.
	sess, err := f.sessions.GetByID(dbctx.Context{Ctx: ctx}, f.tenantID, opened.SessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sess == nil || sess.Status != types.SessionStatusWeighing {
		t.Fatalf("session after failed finalize: %+v", sess)
	}
	if sess.DocketNo != nil {
		t.Fatalf("docket should not be assigned, got=%v", *sess.DocketNo)
	}

	f.authority.fail = nil
	fin, err := f.agg.Finalize(ctx, domainagg.FinalizeInput{
		TenantID: f.tenantID, SessionID: opened.SessionID, TareKg: 3000,
	})
	if err != nil {
		t.Fatalf("retry finalize: %v", err)
	}
	if fin.DocketNo == "" {
		t.Fatalf("retry finalize should issue a docket")
	}
}

func TestWeighingAggregateCancel(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	f := newWeighingFixture(t, tx)
	ctx := context.Background()

	opened, err := f.agg.OpenSession(ctx, f.openInput())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	res, err := f.agg.Cancel(ctx, domainagg.CancelInput{
		TenantID:  f.tenantID,
		SessionID: opened.SessionID,
		Reason:    "driver left",
	})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if res.Status != types.SessionStatusCancelled {
		t.Fatalf("cancel status: want=%s got=%s", types.SessionStatusCancelled, res.Status)
	}

	sess, err := f.sessions.GetByID(dbctx.Context{Ctx: ctx}, f.tenantID, opened.SessionID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if sess.CancelReason != "driver left" {
		t.Fatalf("cancel reason: got=%q", sess.CancelReason)
	}
	if sess.DocketNo != nil {
		t.Fatalf("cancelled session must not carry a docket")
	}
}
