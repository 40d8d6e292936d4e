package weighing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type DocketSequenceRepo interface {
	// NextValue claims the next sequence value for the tenant. The row is
	// locked for the duration of the surrounding transaction; once claimed a
	// value is consumed even if the caller's transaction later rolls back at
	// a higher level — gaps are acceptable, duplicates are not.
	NextValue(dbc dbctx.Context, tenantID uuid.UUID) (int64, error)
}

type docketSequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocketSequenceRepo(db *gorm.DB, baseLog *logger.Logger) DocketSequenceRepo {
	return &docketSequenceRepo{db: db, log: baseLog.With("repo", "DocketSequenceRepo")}
}

func (r *docketSequenceRepo) NextValue(dbc dbctx.Context, tenantID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if tenantID == uuid.Nil {
		return 0, nil
	}
	db := t.WithContext(dbc.Ctx)

	// Ensure the tenant row exists, then claim under a row lock.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.DocketSequence{TenantID: tenantID, NextValue: 1}).Error; err != nil {
		return 0, err
	}

	var seq types.DocketSequence
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).
		First(&seq).Error; err != nil {
		return 0, err
	}
	claimed := seq.NextValue
	if err := db.Model(&types.DocketSequence{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"next_value": claimed + 1,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return 0, err
	}
	return claimed, nil
}
