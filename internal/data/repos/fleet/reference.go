package fleet

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

// ReferenceRepo resolves the collaborator entities a weighing references.
// Every getter returns (nil, nil) when the row does not exist for the tenant.
type ReferenceRepo interface {
	GetJob(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Job, error)
	GetVehicle(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Vehicle, error)
	GetDriver(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Driver, error)
	GetCustomer(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Customer, error)
	GetProduct(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Product, error)
	GetWeighbridge(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Weighbridge, error)
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	return &referenceRepo{db: db, log: baseLog.With("repo", "ReferenceRepo")}
}

func (r *referenceRepo) base(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *referenceRepo) GetJob(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Job, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Job
	err := r.base(dbc).Where("tenant_id = ? AND id = ?", tenantID, id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *referenceRepo) GetVehicle(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Vehicle, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Vehicle
	err := r.base(dbc).Where("tenant_id = ? AND id = ?", tenantID, id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *referenceRepo) GetDriver(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Driver, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Driver
	err := r.base(dbc).Where("tenant_id = ? AND id = ?", tenantID, id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *referenceRepo) GetCustomer(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Customer, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Customer
	err := r.base(dbc).Where("tenant_id = ? AND id = ?", tenantID, id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *referenceRepo) GetProduct(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Product, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Product
	err := r.base(dbc).Where("tenant_id = ? AND id = ?", tenantID, id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *referenceRepo) GetWeighbridge(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Weighbridge, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.Weighbridge
	err := r.base(dbc).Where("tenant_id = ? AND id = ?", tenantID, id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
