package aggregates

import (
	"context"

	"github.com/google/uuid"
)

// DocketAuthority issues tenant-scoped docket numbers. Numbers are never
// reused across the tenant's history, including for attempts that later roll
// back; two concurrent Issue calls must never return the same number.
type DocketAuthority interface {
	Issue(ctx context.Context, tenantID uuid.UUID) (string, error)
}
