package weighing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, rows []*types.WeighingSession) ([]*types.WeighingSession, error)

	GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.WeighingSession, error)
	GetByLocalRef(dbc dbctx.Context, tenantID uuid.UUID, localRef string) (*types.WeighingSession, error)

	// LockByID takes a row lock on the session for the duration of the
	// caller's transaction. Session mutation is single-writer.
	LockByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.WeighingSession, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	CountDockets(dbc dbctx.Context, tenantID uuid.UUID) (int64, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) base(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *sessionRepo) Create(dbc dbctx.Context, rows []*types.WeighingSession) ([]*types.WeighingSession, error) {
	if len(rows) == 0 {
		return []*types.WeighingSession{}, nil
	}
	if err := r.base(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.WeighingSession, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.WeighingSession
	err := r.base(dbc).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) GetByLocalRef(dbc dbctx.Context, tenantID uuid.UUID, localRef string) (*types.WeighingSession, error) {
	if tenantID == uuid.Nil || localRef == "" {
		return nil, nil
	}
	var row types.WeighingSession
	err := r.base(dbc).
		Where("tenant_id = ? AND local_ref = ?", tenantID, localRef).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) LockByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.WeighingSession, error) {
	if tenantID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var row types.WeighingSession
	err := r.base(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return r.base(dbc).
		Model(&types.WeighingSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sessionRepo) CountDockets(dbc dbctx.Context, tenantID uuid.UUID) (int64, error) {
	if tenantID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := r.base(dbc).
		Model(&types.WeighingSession{}).
		Where("tenant_id = ? AND docket_no IS NOT NULL", tenantID).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}
