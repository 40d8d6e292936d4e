package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.success", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteObservesErrorCodeStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.closed", func(_ dbctx.Context) error {
		return domainagg.NewError(domainagg.CodeSessionClosed, "aggregate.test.closed", "session is finalized", nil)
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeSessionClosed) {
		t.Fatalf("expected session_closed code, got=%v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != string(domainagg.CodeSessionClosed) {
		t.Fatalf("operation status: want=%s got=%s", domainagg.CodeSessionClosed, hooks.Operations[0].Status)
	}
}

func TestExecuteWriteTracksConflictCounter(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
	}{
		{"conflict", ConflictError("stale reference")},
		{"duplicate_deck", domainagg.NewError(domainagg.CodeDuplicateDeck, "x", "deck 2 already recorded", nil)},
		{"config_conflict", domainagg.NewError(domainagg.CodeConfigConflict, "x", "duplicate axle 2", nil)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			runner := spyTxRunner{}
			err := executeWrite(context.Background(), BaseDeps{
				Runner: runner,
				Hooks:  hooks,
			}, "aggregate.test."+tc.name, func(_ dbctx.Context) error {
				return tc.err
			})
			if err == nil {
				t.Fatalf("expected error")
			}
			if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "aggregate.test."+tc.name {
				t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
			}
		})
	}
}

func TestExecuteWriteDoesNotCountNonConflictCodes(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}
	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "aggregate.test.notfound", func(_ dbctx.Context) error {
		return domainagg.NewError(domainagg.CodeNotFound, "x", "missing", nil)
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(hooks.Conflicts) != 0 {
		t.Fatalf("conflict hooks should be empty, got=%+v", hooks.Conflicts)
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	wrapped := MapError("x", ConflictError("dup"))
	if got := aggregateErrorStatus(wrapped); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	retry := MapError("x", RetryableError("allocator down"))
	if got := aggregateErrorStatus(retry); got != string(domainagg.CodeNumberingUnavailable) {
		t.Fatalf("retryable status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}
