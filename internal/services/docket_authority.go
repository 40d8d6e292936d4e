package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	dataagg "github.com/axleworks/weighbridge-backend/internal/data/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/data/repos"
	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/engine/docket"
	"github.com/axleworks/weighbridge-backend/internal/observability"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

// redisDocketAuthority issues docket numbers from a per-tenant Redis counter.
// INCR is atomic, so two concurrent issuers can never claim the same value;
// a claimed value is consumed even when the caller later rolls back.
type redisDocketAuthority struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisDocketAuthority(log *logger.Logger) (domainagg.DocketAuthority, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
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

	return &redisDocketAuthority{
		log: log.With("service", "RedisDocketAuthority"),
		rdb: rdb,
	}, nil
}

func (a *redisDocketAuthority) Issue(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if a == nil || a.rdb == nil {
		return "", fmt.Errorf("redis docket authority not initialized")
	}
	if tenantID == uuid.Nil {
		return "", fmt.Errorf("missing tenant_id")
	}
	key := "wb:docket:seq:" + tenantID.String()
	seq, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		observability.Current().IncDocketIssueFailure("redis")
		return "", fmt.Errorf("docket incr: %w", err)
	}
	observability.Current().IncDocketIssued("redis")
	return docket.Format(time.Now().UTC().Year(), seq), nil
}

// sequenceDocketAuthority issues docket numbers from the docket_sequence
// table. Each Issue claims its value in its own short transaction, so the
// value stays consumed when a surrounding finalize rolls back.
type sequenceDocketAuthority struct {
	log    *logger.Logger
	runner dataagg.TxRunner
	seq    repos.DocketSequenceRepo
}

func NewSequenceDocketAuthority(log *logger.Logger, runner dataagg.TxRunner, seqRepo repos.DocketSequenceRepo) domainagg.DocketAuthority {
	return &sequenceDocketAuthority{
		log:    log.With("service", "SequenceDocketAuthority"),
		runner: runner,
		seq:    seqRepo,
	}
}

func (a *sequenceDocketAuthority) Issue(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if a == nil || a.runner == nil || a.seq == nil {
		return "", fmt.Errorf("sequence docket authority not initialized")
	}
	if tenantID == uuid.Nil {
		return "", fmt.Errorf("missing tenant_id")
	}
	var claimed int64
	err := a.runner.InTx(ctx, func(dbc dbctx.Context) error {
		n, err := a.seq.NextValue(dbc, tenantID)
		if err != nil {
			return err
		}
		claimed = n
		return nil
	})
	if err != nil {
		observability.Current().IncDocketIssueFailure("sequence")
		return "", fmt.Errorf("docket sequence claim: %w", err)
	}
	observability.Current().IncDocketIssued("sequence")
	return docket.Format(time.Now().UTC().Year(), claimed), nil
}

// NewDocketAuthority picks the Redis allocator when DOCKET_AUTHORITY=redis
// and Redis is reachable, otherwise the database sequence allocator.
func NewDocketAuthority(log *logger.Logger, runner dataagg.TxRunner, seqRepo repos.DocketSequenceRepo) domainagg.DocketAuthority {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("DOCKET_AUTHORITY")))
	if backend == "redis" {
		authority, err := NewRedisDocketAuthority(log)
		if err == nil {
			return authority
		}
		log.Warn("redis docket authority unavailable, falling back to sequence", "error", err)
	}
	return NewSequenceDocketAuthority(log, runner, seqRepo)
}
