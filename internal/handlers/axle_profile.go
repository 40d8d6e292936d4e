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

type AxleProfileHandler struct {
	log       *logger.Logger
	configSvc services.AxleConfigService
}

func NewAxleProfileHandler(log *logger.Logger, configSvc services.AxleConfigService) *AxleProfileHandler {
	return &AxleProfileHandler{
		log:       log.With("handler", "AxleProfileHandler"),
		configSvc: configSvc,
	}
}

// GET /api/vehicles/:id/axle-profile
func (h *AxleProfileHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.configSvc.GetProfile(c.Request.Context(), rd.TenantID, vehicleID)
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	RespondOK(c, profileResponse(profile))
}

// PUT /api/vehicles/:id/axle-profile
func (h *AxleProfileHandler) Replace(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Entries []struct {
			AxleNumber   int     `json:"axle_number"`
			AxleType     string  `json:"axle_type"`
			MaxAllowedKg float64 `json:"max_allowed_kg"`
		} `json:"entries"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid request body: %w", err))
		return
	}
	in := domainagg.ReplaceProfileInput{
		TenantID:  rd.TenantID,
		VehicleID: vehicleID,
	}
	for _, e := range req.Entries {
		in.Entries = append(in.Entries, domainagg.AxleProfileEntry{
			AxleNumber:   e.AxleNumber,
			AxleType:     e.AxleType,
			MaxAllowedKg: e.MaxAllowedKg,
		})
	}
	profile, err := h.configSvc.ReplaceProfile(c.Request.Context(), in)
	if err != nil {
		RespondEngineError(c, err)
		return
	}
	RespondOK(c, profileResponse(profile))
}

func profileResponse(p domainagg.AxleProfile) gin.H {
	entries := make([]gin.H, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, gin.H{
			"axle_number":    e.AxleNumber,
			"axle_type":      e.AxleType,
			"max_allowed_kg": e.MaxAllowedKg,
		})
	}
	return gin.H{
		"vehicle_id":     p.VehicleID,
		"fleet_number":   p.FleetNumber,
		"declared_axles": p.DeclaredAxles,
		"entries":        entries,
	}
}
