package weighing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type OverloadRecordRepo interface {
	Create(dbc dbctx.Context, rows []*types.OverloadRecord) ([]*types.OverloadRecord, error)
	GetBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.OverloadRecord, error)
}

type overloadRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverloadRecordRepo(db *gorm.DB, baseLog *logger.Logger) OverloadRecordRepo {
	return &overloadRecordRepo{db: db, log: baseLog.With("repo", "OverloadRecordRepo")}
}

func (r *overloadRecordRepo) Create(dbc dbctx.Context, rows []*types.OverloadRecord) ([]*types.OverloadRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.OverloadRecord{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *overloadRecordRepo) GetBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.OverloadRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if sessionID == uuid.Nil {
		return nil, nil
	}
	var row types.OverloadRecord
	err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
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
