package domain

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Reference string    `gorm:"column:reference;not null" json:"reference"`
	Status    string    `gorm:"column:status;not null;default:'active'" json:"status"`
	SourceSiteID      *uuid.UUID `gorm:"type:uuid" json:"source_site_id,omitempty"`
	DestinationSiteID *uuid.UUID `gorm:"type:uuid" json:"destination_site_id,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Job) TableName() string { return "job" }

type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	FleetNumber string    `gorm:"column:fleet_number;not null" json:"fleet_number"`
	AxleCount   int       `gorm:"column:axle_count;not null;default:0" json:"axle_count"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Vehicle) TableName() string { return "vehicle" }

type Driver struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Active   bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Driver) TableName() string { return "driver" }

type Customer struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Active   bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Customer) TableName() string { return "customer" }

type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	Active   bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

type Weighbridge struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SiteCode  string    `gorm:"column:site_code;not null" json:"site_code"`
	DeckCount int       `gorm:"column:deck_count;not null;default:1" json:"deck_count"`
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Weighbridge) TableName() string { return "weighbridge" }

// AxleEntry is one axle of a vehicle's weight-limit profile. Entries for a
// vehicle are replaced as a full set; axle numbers are contiguous from 1.
type AxleEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VehicleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_axle_entry_vehicle_number,priority:1" json:"vehicle_id"`
	Vehicle      *Vehicle  `gorm:"constraint:OnDelete:CASCADE;foreignKey:VehicleID;references:ID" json:"vehicle,omitempty"`
	AxleNumber   int       `gorm:"column:axle_number;not null;uniqueIndex:idx_axle_entry_vehicle_number,priority:2" json:"axle_number"`
	AxleType     string    `gorm:"column:axle_type;not null" json:"axle_type"`
	MaxAllowedKg float64   `gorm:"column:max_allowed_kg;not null" json:"max_allowed_kg"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AxleEntry) TableName() string { return "axle_entry" }
