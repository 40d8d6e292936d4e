package services

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/observability"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

// WeighingService fronts the weighing aggregate with per-session write
// serialization, audit events and metrics.
type WeighingService interface {
	Open(ctx context.Context, in domainagg.OpenSessionInput) (domainagg.OpenSessionResult, error)
	RecordDeck(ctx context.Context, in domainagg.RecordDeckInput) (domainagg.RecordDeckResult, error)
	Finalize(ctx context.Context, in domainagg.FinalizeInput) (domainagg.FinalizeResult, error)
	Cancel(ctx context.Context, in domainagg.CancelInput) (domainagg.CancelResult, error)

	GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionDetail, error)
}

type SessionDetail struct {
	Session  *types.WeighingSession `json:"session"`
	Samples  []*types.DeckSample    `json:"samples"`
	Overload *types.OverloadRecord  `json:"overload,omitempty"`
}

const sessionLockStripes = 128

type weighingService struct {
	log   *logger.Logger
	agg   domainagg.WeighingAggregate
	audit AuditSink

	sessions  repos.SessionRepo
	samples   repos.DeckSampleRepo
	overloads repos.OverloadRecordRepo

	// Per-session write serialization within this process; the aggregate's
	// row lock covers writers on other instances.
	locks [sessionLockStripes]sync.Mutex
}

func NewWeighingService(
	baseLog *logger.Logger,
	agg domainagg.WeighingAggregate,
	audit AuditSink,
	sessionRepo repos.SessionRepo,
	sampleRepo repos.DeckSampleRepo,
	overloadRepo repos.OverloadRecordRepo,
) WeighingService {
	if audit == nil {
		audit = NewNoopAuditSink()
	}
	return &weighingService{
		log:       baseLog.With("service", "WeighingService"),
		agg:       agg,
		audit:     audit,
		sessions:  sessionRepo,
		samples:   sampleRepo,
		overloads: overloadRepo,
	}
}

func (s *weighingService) lockFor(sessionID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write(sessionID[:])
	return &s.locks[h.Sum32()%sessionLockStripes]
}

func (s *weighingService) Open(ctx context.Context, in domainagg.OpenSessionInput) (domainagg.OpenSessionResult, error) {
	res, err := s.agg.OpenSession(ctx, in)
	if err != nil {
		return res, err
	}
	observability.Current().IncSessionOpened()
	s.log.Info("session opened",
		"session_id", res.SessionID,
		"tenant_id", in.TenantID,
		"job_id", in.JobID,
		"vehicle_id", in.VehicleID,
	)
	return res, nil
}

func (s *weighingService) RecordDeck(ctx context.Context, in domainagg.RecordDeckInput) (domainagg.RecordDeckResult, error) {
	mu := s.lockFor(in.SessionID)
	mu.Lock()
	defer mu.Unlock()
	return s.agg.RecordDeck(ctx, in)
}

func (s *weighingService) Finalize(ctx context.Context, in domainagg.FinalizeInput) (domainagg.FinalizeResult, error) {
	mu := s.lockFor(in.SessionID)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.agg.Finalize(ctx, in)
	if err != nil {
		return res, err
	}
	observability.Current().IncSessionFinalized(res.Overloaded)
	s.audit.Emit(ctx, AuditEvent{
		Type:     AuditSessionFinalized,
		TenantID: in.TenantID,
		At:       time.Now().UTC(),
		Data: map[string]any{
			"session_id":  res.SessionID,
			"docket_no":   res.DocketNo,
			"gross_kg":    res.GrossKg,
			"net_kg":      res.NetKg,
			"overloaded":  res.Overloaded,
			"overload_kg": res.OverloadKg,
		},
	})
	s.log.Info("session finalized",
		"session_id", res.SessionID,
		"tenant_id", in.TenantID,
		"docket_no", res.DocketNo,
		"overloaded", res.Overloaded,
	)
	if res.PartialWeighing {
		s.log.Warn("session finalized with fewer decks than declared axles",
			"session_id", res.SessionID,
			"tenant_id", in.TenantID,
		)
	}
	return res, nil
}

func (s *weighingService) Cancel(ctx context.Context, in domainagg.CancelInput) (domainagg.CancelResult, error) {
	mu := s.lockFor(in.SessionID)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.agg.Cancel(ctx, in)
	if err != nil {
		return res, err
	}
	observability.Current().IncSessionCancelled()
	s.audit.Emit(ctx, AuditEvent{
		Type:     AuditSessionCancelled,
		TenantID: in.TenantID,
		At:       time.Now().UTC(),
		Data: map[string]any{
			"session_id": res.SessionID,
			"reason":     in.Reason,
		},
	})
	s.log.Info("session cancelled", "session_id", res.SessionID, "tenant_id", in.TenantID)
	return res, nil
}

func (s *weighingService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionDetail, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sess, err := s.sessions.GetByID(dbc, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, "Weighing.Session.Get", "session not found", nil)
	}
	samples, err := s.samples.ListBySession(dbc, sess.ID)
	if err != nil {
		return nil, err
	}
	detail := &SessionDetail{Session: sess, Samples: samples}
	if sess.Overloaded {
		rec, err := s.overloads.GetBySession(dbc, sess.ID)
		if err != nil {
			return nil, err
		}
		detail.Overload = rec
	}
	return detail, nil
}
