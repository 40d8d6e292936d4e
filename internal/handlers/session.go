package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
	"github.com/axleworks/weighbridge-backend/internal/requestdata"
	"github.com/axleworks/weighbridge-backend/internal/services"
)

type SessionHandler struct {
	log         *logger.Logger
	weighingSvc services.WeighingService
}

func NewSessionHandler(log *logger.Logger, weighingSvc services.WeighingService) *SessionHandler {
	return &SessionHandler{
		log:         log.With("handler", "SessionHandler"),
		weighingSvc: weighingSvc,
	}
}

// POST /api/sessions
func (h *SessionHandler) Open(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req struct {
		JobID             uuid.UUID  `json:"job_id"`
		VehicleID         uuid.UUID  `json:"vehicle_id"`
		DriverID          uuid.UUID  `json:"driver_id"`
		CustomerID        uuid.UUID  `json:"customer_id"`
		ProductID         uuid.UUID  `json:"product_id"`
		WeighbridgeID     uuid.UUID  `json:"weighbridge_id"`
		SourceSiteID      *uuid.UUID `json:"source_site_id"`
		DestinationSiteID *uuid.UUID `json:"destination_site_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request body: %w", err))
		return
	}
	res, err := h.weighingSvc.Open(c.Request.Context(), domainagg.OpenSessionInput{
		TenantID:          rd.TenantID,
		JobID:             req.JobID,
		VehicleID:         req.VehicleID,
		DriverID:          req.DriverID,
		CustomerID:        req.CustomerID,
		ProductID:         req.ProductID,
		WeighbridgeID:     req.WeighbridgeID,
		SourceSiteID:      req.SourceSiteID,
		DestinationSiteID: req.DestinationSiteID,
	})
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/sessions/:id/decks
func (h *SessionHandler) RecordDeck(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		DeckNumber int     `json:"deck_number"`
		WeightKg   float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request body: %w", err))
		return
	}
	res, err := h.weighingSvc.RecordDeck(c.Request.Context(), domainagg.RecordDeckInput{
		TenantID:   rd.TenantID,
		SessionID:  sessionID,
		DeckNumber: req.DeckNumber,
		WeightKg:   req.WeightKg,
	})
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	RespondOK(c, res)
}

// POST /api/sessions/:id/finalize
func (h *SessionHandler) Finalize(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TareKg         float64 `json:"tare_kg"`
		ManualOverride bool    `json:"manual_override"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request body: %w", err))
		return
	}
	res, err := h.weighingSvc.Finalize(c.Request.Context(), domainagg.FinalizeInput{
		TenantID:       rd.TenantID,
		SessionID:      sessionID,
		TareKg:         req.TareKg,
		ManualOverride: req.ManualOverride,
	})
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	RespondOK(c, res)
}

// POST /api/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request body: %w", err))
		return
	}
	res, err := h.weighingSvc.Cancel(c.Request.Context(), domainagg.CancelInput{
		TenantID:  rd.TenantID,
		SessionID: sessionID,
		Reason:    req.Reason,
	})
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	RespondOK(c, res)
}

// GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.weighingSvc.GetSession(c.Request.Context(), rd.TenantID, sessionID)
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	RespondOK(c, detail)
}

func pathID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid %s: %w", param, err))
		return uuid.Nil, false
	}
	return id, true
}
