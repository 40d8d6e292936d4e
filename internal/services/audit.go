package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

const (
	AuditSessionFinalized = "session.finalized"
	AuditSessionCancelled = "session.cancelled"
	AuditSyncReconciled   = "sync.reconciled"
)

type AuditEvent struct {
	Type     string         `json:"type"`
	TenantID uuid.UUID      `json:"tenant_id"`
	At       time.Time      `json:"at"`
	Data     map[string]any `json:"data,omitempty"`
}

// AuditSink receives weighing audit events. Emission is fire and forget: a
// sink failure is logged by the sink and never propagated to the caller.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type noopAuditSink struct{}

func NewNoopAuditSink() AuditSink { return noopAuditSink{} }

func (noopAuditSink) Emit(context.Context, AuditEvent) {}

type redisAuditSink struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisAuditSink(log *logger.Logger) (AuditSink, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("AUDIT_CHANNEL"))
	if ch == "" {
		ch = "weighbridge.audit"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisAuditSink{
		log:     log.With("service", "RedisAuditSink"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (s *redisAuditSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.rdb == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	raw, err := json.Marshal(event)
	if err != nil {
		s.log.Warn("audit event marshal failed", "type", event.Type, "error", err)
		return
	}
	if err := s.rdb.Publish(ctx, s.channel, raw).Err(); err != nil {
		s.log.Warn("audit publish failed", "type", event.Type, "error", err)
	}
}
