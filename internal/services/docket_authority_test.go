package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	aggtest "github.com/axleworks/weighbridge-backend/internal/data/aggregates/testutil"
	"github.com/axleworks/weighbridge-backend/internal/engine/docket"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
)

type fakeSequenceRepo struct {
	mu   sync.Mutex
	next map[uuid.UUID]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{next: map[uuid.UUID]int64{}}
}

func (r *fakeSequenceRepo) NextValue(_ dbctx.Context, tenantID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next[tenantID] == 0 {
		r.next[tenantID] = 1
	}
	claimed := r.next[tenantID]
	r.next[tenantID]++
	return claimed, nil
}

func TestSequenceDocketAuthorityFormat(t *testing.T) {
	authority := NewSequenceDocketAuthority(testLogger(t), &aggtest.InjectedTxRunner{}, newFakeSequenceRepo())

	tenantID := uuid.New()
	no, err := authority.Issue(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	want := fmt.Sprintf("WB-%d-000001", time.Now().UTC().Year())
	if no != want {
		t.Fatalf("docket: want=%s got=%s", want, no)
	}
	if !docket.IsAuthoritative(no) {
		t.Fatalf("issued docket should be authoritative: %s", no)
	}
	if docket.IsProvisional(no) {
		t.Fatalf("issued docket must not look provisional: %s", no)
	}
}

func TestSequenceDocketAuthorityNeverDuplicates(t *testing.T) {
	authority := NewSequenceDocketAuthority(testLogger(t), &aggtest.InjectedTxRunner{}, newFakeSequenceRepo())
	tenantID := uuid.New()

	const n = 64
	var wg sync.WaitGroup
	out := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			no, err := authority.Issue(context.Background(), tenantID)
			if err != nil {
				t.Errorf("Issue: %v", err)
				return
			}
			out <- no
		}()
	}
	wg.Wait()
	close(out)

	seen := map[string]bool{}
	for no := range out {
		if seen[no] {
			t.Fatalf("duplicate docket issued: %s", no)
		}
		seen[no] = true
	}
	if len(seen) != n {
		t.Fatalf("issued dockets: want=%d got=%d", n, len(seen))
	}
}

func TestSequenceDocketAuthorityTenantsAreIndependent(t *testing.T) {
	authority := NewSequenceDocketAuthority(testLogger(t), &aggtest.InjectedTxRunner{}, newFakeSequenceRepo())

	a, err := authority.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue tenant a: %v", err)
	}
	b, err := authority.Issue(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Issue tenant b: %v", err)
	}
	// Separate tenants each start their own sequence.
	if !strings.HasSuffix(a, "-000001") || !strings.HasSuffix(b, "-000001") {
		t.Fatalf("tenant sequences: a=%s b=%s", a, b)
	}
}

func TestSequenceDocketAuthorityRejectsMissingTenant(t *testing.T) {
	authority := NewSequenceDocketAuthority(testLogger(t), &aggtest.InjectedTxRunner{}, newFakeSequenceRepo())
	if _, err := authority.Issue(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil tenant")
	}
}
