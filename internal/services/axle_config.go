package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	domainagg "github.com/axleworks/weighbridge-backend/internal/domain/aggregates"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

// AxleConfigService fronts the axle config aggregate and fills omitted
// per-axle limits from the statutory defaults file.
type AxleConfigService interface {
	GetProfile(ctx context.Context, tenantID, vehicleID uuid.UUID) (domainagg.AxleProfile, error)
	ReplaceProfile(ctx context.Context, in domainagg.ReplaceProfileInput) (domainagg.AxleProfile, error)
}

type axleConfigService struct {
	log      *logger.Logger
	agg      domainagg.AxleConfigAggregate
	defaults map[string]float64
}

func NewAxleConfigService(baseLog *logger.Logger, agg domainagg.AxleConfigAggregate, defaults map[string]float64) AxleConfigService {
	return &axleConfigService{
		log:      baseLog.With("service", "AxleConfigService"),
		agg:      agg,
		defaults: defaults,
	}
}

func (s *axleConfigService) GetProfile(ctx context.Context, tenantID, vehicleID uuid.UUID) (domainagg.AxleProfile, error) {
	return s.agg.GetProfile(ctx, tenantID, vehicleID)
}

func (s *axleConfigService) ReplaceProfile(ctx context.Context, in domainagg.ReplaceProfileInput) (domainagg.AxleProfile, error) {
	for i, e := range in.Entries {
		if e.MaxAllowedKg > 0 {
			continue
		}
		def, ok := s.defaults[strings.ToLower(strings.TrimSpace(e.AxleType))]
		if !ok {
			return domainagg.AxleProfile{},
				domainagg.NewError(domainagg.CodeValidation, "Fleet.AxleConfig.ReplaceProfile",
					fmt.Sprintf("axle %d has no limit and no default exists for type %q", e.AxleNumber, e.AxleType), nil)
		}
		in.Entries[i].MaxAllowedKg = def
	}
	return s.agg.ReplaceProfile(ctx, in)
}

type axleLimitsFile struct {
	Limits map[string]float64 `yaml:"limits"`
}

// LoadAxleLimits reads the per-axle-type default limits file. A missing path
// yields an empty map; callers must then supply explicit limits per axle.
func LoadAxleLimits(log *logger.Logger, path string) map[string]float64 {
	path = strings.TrimSpace(path)
	if path == "" {
		return map[string]float64{}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("axle limits file unreadable, continuing without defaults", "path", path, "error", err)
		}
		return map[string]float64{}
	}
	var f axleLimitsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		if log != nil {
			log.Warn("axle limits file malformed, continuing without defaults", "path", path, "error", err)
		}
		return map[string]float64{}
	}
	out := make(map[string]float64, len(f.Limits))
	for k, v := range f.Limits {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" || v <= 0 {
			continue
		}
		out[key] = v
	}
	if log != nil && len(out) > 0 {
		log.Info("axle limit defaults loaded", "path", path, "types", len(out))
	}
	return out
}
