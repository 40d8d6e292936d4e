package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
	"github.com/axleworks/weighbridge-backend/internal/requestdata"
	"github.com/axleworks/weighbridge-backend/internal/services"
)

type SyncHandler struct {
	log     *logger.Logger
	syncSvc services.SyncService
}

func NewSyncHandler(log *logger.Logger, syncSvc services.SyncService) *SyncHandler {
	return &SyncHandler{
		log:     log.With("handler", "SyncHandler"),
		syncSvc: syncSvc,
	}
}

// POST /api/sync/batches
//
// A partially applied batch is still a 200; the per-entry outcomes are in
// the report. Only a numbering outage fails the request, and the report up
// to that point rides along in the error envelope so the site can resubmit
// just the remainder.
func (h *SyncHandler) SubmitBatch(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req struct {
		SiteCode string                    `json:"site_code"`
		Entries  []services.SyncEntryInput `json:"entries"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request body: %w", err))
		return
	}
	report, err := h.syncSvc.Reconcile(c.Request.Context(), services.SyncBatchInput{
		TenantID: rd.TenantID,
		SiteCode: req.SiteCode,
		Entries:  req.Entries,
	})
	if err != nil {
		c.JSON(statusForCode(domainagg.CodeOf(err)), gin.H{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	RespondOK(c, report)
}
