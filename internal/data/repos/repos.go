package repos

import (
	"gorm.io/gorm"

	"github.com/axleworks/weighbridge-backend/internal/data/repos/fleet"
	"github.com/axleworks/weighbridge-backend/internal/data/repos/weighing"
	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
)

type ReferenceRepo = fleet.ReferenceRepo
type AxleEntryRepo = fleet.AxleEntryRepo

type SessionRepo = weighing.SessionRepo
type DeckSampleRepo = weighing.DeckSampleRepo
type OverloadRecordRepo = weighing.OverloadRecordRepo
type DocketSequenceRepo = weighing.DocketSequenceRepo
type SyncBatchRepo = weighing.SyncBatchRepo

// Set is the full repository wiring used by main and the aggregates.
type Set struct {
	Reference      ReferenceRepo
	AxleEntries    AxleEntryRepo
	Sessions       SessionRepo
	DeckSamples    DeckSampleRepo
	OverloadRecs   OverloadRecordRepo
	DocketSequence DocketSequenceRepo
	SyncBatches    SyncBatchRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Reference:      fleet.NewReferenceRepo(db, baseLog),
		AxleEntries:    fleet.NewAxleEntryRepo(db, baseLog),
		Sessions:       weighing.NewSessionRepo(db, baseLog),
		DeckSamples:    weighing.NewDeckSampleRepo(db, baseLog),
		OverloadRecs:   weighing.NewOverloadRecordRepo(db, baseLog),
		DocketSequence: weighing.NewDocketSequenceRepo(db, baseLog),
		SyncBatches:    weighing.NewSyncBatchRepo(db, baseLog),
	}
}
