package weighing

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"github.com/axleworks/weighbridge-backend/internal/pkg/dbctx"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type DeckSampleRepo interface {
	Create(dbc dbctx.Context, rows []*types.DeckSample) ([]*types.DeckSample, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.DeckSample, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type deckSampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeckSampleRepo(db *gorm.DB, baseLog *logger.Logger) DeckSampleRepo {
	return &deckSampleRepo{db: db, log: baseLog.With("repo", "DeckSampleRepo")}
}

func (r *deckSampleRepo) Create(dbc dbctx.Context, rows []*types.DeckSample) ([]*types.DeckSample, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.DeckSample{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *deckSampleRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.DeckSample, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DeckSample
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("deck_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *deckSampleRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.DeckSample{}).
		Where("id = ?", id).
		Updates(updates).Error
}
