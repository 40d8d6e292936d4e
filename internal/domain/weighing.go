package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WeighingSession is the mutable aggregate for one vehicle crossing. Once the
// status is finalized or cancelled the row is an immutable historical record.
type WeighingSession struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_tenant_docket,priority:1;uniqueIndex:idx_session_tenant_local_ref,priority:1" json:"tenant_id"`
	JobID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"job_id"`
	VehicleID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	DriverID      uuid.UUID  `gorm:"type:uuid;not null" json:"driver_id"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;not null" json:"customer_id"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null" json:"product_id"`
	WeighbridgeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"weighbridge_id"`
	Status        string     `gorm:"column:status;not null;default:'open';index" json:"status"`
	GrossKg       float64    `gorm:"column:gross_kg;not null;default:0" json:"gross_kg"`
	TareKg        float64    `gorm:"column:tare_kg;not null;default:0" json:"tare_kg"`
	NetKg         float64    `gorm:"column:net_kg;not null;default:0" json:"net_kg"`
	Overloaded    bool       `gorm:"column:overloaded;not null;default:false" json:"overloaded"`
	DocketNo      *string    `gorm:"column:docket_no;uniqueIndex:idx_session_tenant_docket,priority:2" json:"docket_no,omitempty"`
	OfflineOrigin bool       `gorm:"column:offline_origin;not null;default:false" json:"offline_origin"`
	LocalRef      *string    `gorm:"column:local_ref;uniqueIndex:idx_session_tenant_local_ref,priority:2" json:"local_ref,omitempty"`
	SourceSiteID      *uuid.UUID `gorm:"type:uuid" json:"source_site_id,omitempty"`
	DestinationSiteID *uuid.UUID `gorm:"type:uuid" json:"destination_site_id,omitempty"`
	CancelReason  string     `gorm:"column:cancel_reason" json:"cancel_reason,omitempty"`
	CapturedAt    time.Time  `gorm:"column:captured_at;not null;default:now()" json:"captured_at"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (WeighingSession) TableName() string { return "weighing_session" }

// DeckSample is one deck reading for a session. Samples have no lifecycle of
// their own and are cascade-deleted with the parent session.
type DeckSample struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_deck_sample_session_deck,priority:1" json:"session_id"`
	Session      *WeighingSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	DeckNumber   int              `gorm:"column:deck_number;not null;uniqueIndex:idx_deck_sample_session_deck,priority:2" json:"deck_number"`
	WeightKg     float64          `gorm:"column:weight_kg;not null" json:"weight_kg"`
	AxleType     string           `gorm:"column:axle_type" json:"axle_type"`
	MaxAllowedKg float64          `gorm:"column:max_allowed_kg;not null;default:0" json:"max_allowed_kg"`
	Overloaded   bool             `gorm:"column:overloaded;not null;default:false" json:"overloaded"`
	CreatedAt    time.Time        `gorm:"not null;default:now()" json:"created_at"`
}

func (DeckSample) TableName() string { return "deck_sample" }

// OverloadRecord exists only for finalized sessions that exceeded a limit.
type OverloadRecord struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	Session    *WeighingSession `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	OverloadKg float64          `gorm:"column:overload_kg;not null" json:"overload_kg"`
	Axles      datatypes.JSON   `gorm:"column:axles;type:jsonb" json:"axles"`
	CreatedAt  time.Time        `gorm:"not null;default:now()" json:"created_at"`
}

func (OverloadRecord) TableName() string { return "overload_record" }

// OffendingAxle is the JSON shape stored in OverloadRecord.Axles.
type OffendingAxle struct {
	AxleNumber   int     `json:"axle_number"`
	AxleType     string  `json:"axle_type"`
	WeightKg     float64 `json:"weight_kg"`
	MaxAllowedKg float64 `json:"max_allowed_kg"`
	OverKg       float64 `json:"over_kg"`
}

// DocketSequence backs the database docket allocator, one row per tenant.
type DocketSequence struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	NextValue int64     `gorm:"column:next_value;not null;default:1" json:"next_value"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DocketSequence) TableName() string { return "docket_sequence" }

// SyncBatch is the audit record of one offline reconciliation submission.
type SyncBatch struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SiteCode      string         `gorm:"column:site_code;not null" json:"site_code"`
	EntryCount    int            `gorm:"column:entry_count;not null" json:"entry_count"`
	AppliedCount  int            `gorm:"column:applied_count;not null" json:"applied_count"`
	SkippedCount  int            `gorm:"column:skipped_count;not null" json:"skipped_count"`
	ConflictCount int            `gorm:"column:conflict_count;not null" json:"conflict_count"`
	Detail        datatypes.JSON `gorm:"column:detail;type:jsonb" json:"detail"`
	SubmittedAt   time.Time      `gorm:"column:submitted_at;not null;default:now()" json:"submitted_at"`
}

func (SyncBatch) TableName() string { return "sync_batch" }
