package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/observability"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

// SyncService replays offline-captured weighings from a site batch. Entries
// are applied one transaction at a time in capture order; a conflicting entry
// is reported and the batch continues.
type SyncService interface {
	Reconcile(ctx context.Context, in SyncBatchInput) (SyncReport, error)
}

type SyncBatchInput struct {
	TenantID uuid.UUID
	SiteCode string
	Entries  []SyncEntryInput
}

type SyncEntryInput struct {
	LocalRef      string                  `json:"local_ref"`
	JobID         uuid.UUID               `json:"job_id"`
	VehicleID     uuid.UUID               `json:"vehicle_id"`
	DriverID      uuid.UUID               `json:"driver_id"`
	CustomerID    uuid.UUID               `json:"customer_id"`
	ProductID     uuid.UUID               `json:"product_id"`
	WeighbridgeID uuid.UUID               `json:"weighbridge_id"`
	TareKg        float64                 `json:"tare_kg"`
	CapturedAt    time.Time               `json:"captured_at"`
	Decks         []domainagg.OfflineDeck `json:"decks"`
}

type SyncEntryResult struct {
	LocalRef  string    `json:"local_ref"`
	Outcome   string    `json:"outcome"`
	SessionID uuid.UUID `json:"session_id,omitempty"`
	DocketNo  string    `json:"docket_no,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type SyncReport struct {
	BatchID   uuid.UUID         `json:"batch_id"`
	SiteCode  string            `json:"site_code"`
	Entries   int               `json:"entries"`
	Applied   int               `json:"applied"`
	Skipped   int               `json:"skipped"`
	Conflicts int               `json:"conflicts"`
	Results   []SyncEntryResult `json:"results"`
}

type syncService struct {
	log     *logger.Logger
	agg     domainagg.ReconcileAggregate
	batches repos.SyncBatchRepo
	audit   AuditSink
}

func NewSyncService(
	baseLog *logger.Logger,
	agg domainagg.ReconcileAggregate,
	batchRepo repos.SyncBatchRepo,
	audit AuditSink,
) SyncService {
	if audit == nil {
		audit = NewNoopAuditSink()
	}
	return &syncService{
		log:     baseLog.With("service", "SyncService"),
		agg:     agg,
		batches: batchRepo,
		audit:   audit,
	}
}

func (s *syncService) Reconcile(ctx context.Context, in SyncBatchInput) (SyncReport, error) {
	report := SyncReport{
		BatchID:  uuid.New(),
		SiteCode: strings.ToUpper(strings.TrimSpace(in.SiteCode)),
		Entries:  len(in.Entries),
	}
	if in.TenantID == uuid.Nil {
		return report, domainagg.NewError(domainagg.CodeValidation, "Sync.Reconcile", "missing tenant_id", nil)
	}
	if len(in.Entries) == 0 {
		return report, domainagg.NewError(domainagg.CodeValidation, "Sync.Reconcile", "batch has no entries", nil)
	}

	// Apply in original capture order so a site's sessions land in the
	// sequence they physically happened, regardless of upload order.
	entries := make([]SyncEntryInput, len(in.Entries))
	copy(entries, in.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CapturedAt.Before(entries[j].CapturedAt)
	})

	for _, e := range entries {
		res, err := s.agg.ApplyEntry(ctx, domainagg.ApplyEntryInput{
			TenantID:      in.TenantID,
			LocalRef:      e.LocalRef,
			JobID:         e.JobID,
			VehicleID:     e.VehicleID,
			DriverID:      e.DriverID,
			CustomerID:    e.CustomerID,
			ProductID:     e.ProductID,
			WeighbridgeID: e.WeighbridgeID,
			TareKg:        e.TareKg,
			CapturedAt:    e.CapturedAt,
			Decks:         e.Decks,
		})
		entry := SyncEntryResult{LocalRef: e.LocalRef}
		switch {
		case err == nil:
			entry.Outcome = domainagg.ReconcileApplied
			entry.SessionID = res.SessionID
			entry.DocketNo = res.DocketNo
			report.Applied++
		case domainagg.IsCode(err, domainagg.CodeAlreadyApplied):
			entry.Outcome = domainagg.ReconcileAlreadyApplied
			entry.SessionID = res.SessionID
			entry.DocketNo = res.DocketNo
			report.Skipped++
		case domainagg.IsCode(err, domainagg.CodeNumberingUnavailable):
			// Nothing later in the batch can succeed either; stop here and let
			// the site retry the whole batch. Entries already applied are safe
			// behind the local_ref idempotency check.
			return report, err
		default:
			entry.Outcome = domainagg.ReconcileConflict
			entry.Reason = err.Error()
			report.Conflicts++
		}
		observability.Current().IncSyncEntry(entry.Outcome)
		report.Results = append(report.Results, entry)
	}

	s.persistBatch(ctx, in.TenantID, report)
	observability.Current().IncSyncBatch()
	s.audit.Emit(ctx, AuditEvent{
		Type:     AuditSyncReconciled,
		TenantID: in.TenantID,
		At:       time.Now().UTC(),
		Data: map[string]any{
			"batch_id":  report.BatchID,
			"site_code": report.SiteCode,
			"entries":   report.Entries,
			"applied":   report.Applied,
			"skipped":   report.Skipped,
			"conflicts": report.Conflicts,
		},
	})
	s.log.Info("sync batch reconciled",
		"batch_id", report.BatchID,
		"tenant_id", in.TenantID,
		"site_code", report.SiteCode,
		"applied", report.Applied,
		"skipped", report.Skipped,
		"conflicts", report.Conflicts,
	)
	return report, nil
}

// persistBatch stores the audit row for the submission. The report was
// already produced; a storage failure here is logged, not returned.
func (s *syncService) persistBatch(ctx context.Context, tenantID uuid.UUID, report SyncReport) {
	if s.batches == nil {
		return
	}
	detail, err := json.Marshal(report.Results)
	if err != nil {
		s.log.Warn("sync batch detail marshal failed", "batch_id", report.BatchID, "error", err)
		detail = []byte("[]")
	}
	row := &types.SyncBatch{
		ID:            report.BatchID,
		TenantID:      tenantID,
		SiteCode:      report.SiteCode,
		EntryCount:    report.Entries,
		AppliedCount:  report.Applied,
		SkippedCount:  report.Skipped,
		ConflictCount: report.Conflicts,
		Detail:        datatypes.JSON(detail),
		SubmittedAt:   time.Now().UTC(),
	}
	if _, err := s.batches.Create(dbctx.Context{Ctx: ctx}, []*types.SyncBatch{row}); err != nil {
		s.log.Warn("sync batch persist failed", "batch_id", report.BatchID, "error", err)
	}
}
