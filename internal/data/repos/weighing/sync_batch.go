package weighing

import (
	"gorm.io/gorm"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type SyncBatchRepo interface {
	Create(dbc dbctx.Context, rows []*types.SyncBatch) ([]*types.SyncBatch, error)
}

type syncBatchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncBatchRepo(db *gorm.DB, baseLog *logger.Logger) SyncBatchRepo {
	return &syncBatchRepo{db: db, log: baseLog.With("repo", "SyncBatchRepo")}
}

func (r *syncBatchRepo) Create(dbc dbctx.Context, rows []*types.SyncBatch) ([]*types.SyncBatch, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.SyncBatch{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
