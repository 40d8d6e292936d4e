package fleet

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type AxleEntryRepo interface {
	ListByVehicle(dbc dbctx.Context, vehicleID uuid.UUID) ([]*types.AxleEntry, error)

	// ReplaceForVehicle deletes the vehicle's entries and inserts the new set.
	// Callers are expected to run it inside a transaction.
	ReplaceForVehicle(dbc dbctx.Context, vehicleID uuid.UUID, rows []*types.AxleEntry) ([]*types.AxleEntry, error)
}

type axleEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAxleEntryRepo(db *gorm.DB, baseLog *logger.Logger) AxleEntryRepo {
	return &axleEntryRepo{db: db, log: baseLog.With("repo", "AxleEntryRepo")}
}

func (r *axleEntryRepo) ListByVehicle(dbc dbctx.Context, vehicleID uuid.UUID) ([]*types.AxleEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AxleEntry
	if vehicleID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("axle_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *axleEntryRepo) ReplaceForVehicle(dbc dbctx.Context, vehicleID uuid.UUID, rows []*types.AxleEntry) ([]*types.AxleEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if vehicleID == uuid.Nil {
		return []*types.AxleEntry{}, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("vehicle_id = ?", vehicleID).
		Delete(&types.AxleEntry{}).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*types.AxleEntry{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
