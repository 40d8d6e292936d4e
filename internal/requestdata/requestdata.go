package requestdata

import (
	"context"

	"github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the authenticated tenant scope for the request.
// Every operation below the handlers is keyed by TenantID.
type RequestData struct {
	TokenString string
	TenantID    uuid.UUID
	Subject     string
	Permissions []string
}

func (rd *RequestData) HasPermission(perm string) bool {
	if rd == nil {
		return false
	}
	for _, p := range rd.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
