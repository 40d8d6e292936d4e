package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
)

func TestMapErrorPassesThroughEngineErrors(t *testing.T) {
	orig := domainagg.NewError(domainagg.CodeSessionClosed, "op", "session is finalized", nil)
	got := MapError("other.op", orig)
	if got != orig {
		t.Fatalf("engine error should pass through unchanged, got=%v", got)
	}
}

func TestMapErrorSentinels(t *testing.T) {
	if err := MapError("op", ValidationError("bad input")); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("validation sentinel: got=%v", err)
	}
	if err := MapError("op", ConflictError("stale")); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("conflict sentinel: got=%v", err)
	}
	if err := MapError("op", RetryableError("allocator down")); !domainagg.IsCode(err, domainagg.CodeNumberingUnavailable) {
		t.Fatalf("retryable sentinel: got=%v", err)
	}
	if err := MapError("op", gorm.ErrRecordNotFound); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("record not found: got=%v", err)
	}
}

func TestMapErrorUniqueViolationByConstraint(t *testing.T) {
	for _, tc := range []struct {
		constraint string
		want       domainagg.ErrorCode
	}{
		{"idx_deck_sample_session_deck", domainagg.CodeDuplicateDeck},
		{"idx_axle_entry_vehicle_number", domainagg.CodeConfigConflict},
		{"idx_session_tenant_local_ref", domainagg.CodeAlreadyApplied},
		{"idx_session_tenant_docket", domainagg.CodeConflict},
		{"some_other_unique", domainagg.CodeConflict},
	} {
		t.Run(tc.constraint, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
			err := MapError("op", pgErr)
			if !domainagg.IsCode(err, tc.want) {
				t.Fatalf("constraint %s: want=%s got=%v", tc.constraint, tc.want, err)
			}
		})
	}
}

func TestMapErrorLockAndSerializationFailures(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := MapError("op", &pgconn.PgError{Code: code})
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("pg code %s: want=conflict got=%v", code, err)
		}
	}
}

func TestMapErrorUnknownFallsBackToInternal(t *testing.T) {
	err := MapError("op", errors.New("connection reset by peer"))
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("unknown error: want=internal got=%v", err)
	}
}
