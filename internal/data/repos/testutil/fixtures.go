package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	types "github.com/axleworks/weighbridge-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, status string) *types.Job {
	tb.Helper()
	j := &types.Job{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Reference: "JOB-001",
		Status:    status,
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func SeedVehicle(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, axleCount int) *types.Vehicle {
	tb.Helper()
	v := &types.Vehicle{
		ID:          uuid.New(),
		TenantID:    tenantID,
		FleetNumber: "FLT-42",
		AxleCount:   axleCount,
		Active:      true,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed vehicle: %v", err)
	}
	return v
}

func SeedDriver(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) *types.Driver {
	tb.Helper()
	d := &types.Driver{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     "J. Haul",
		Active:   true,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed driver: %v", err)
	}
	return d
}

func SeedCustomer(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) *types.Customer {
	tb.Helper()
	c := &types.Customer{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     "Quarry Co",
		Active:   true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed customer: %v", err)
	}
	return c
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     "Aggregate 20mm",
		Active:   true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedWeighbridge(tb testing.TB, ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, siteCode string, deckCount int) *types.Weighbridge {
	tb.Helper()
	w := &types.Weighbridge{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SiteCode:  siteCode,
		DeckCount: deckCount,
		Active:    true,
	}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed weighbridge: %v", err)
	}
	return w
}

func SeedAxleEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID, axleNumber int, axleType string, maxKg float64) *types.AxleEntry {
	tb.Helper()
	e := &types.AxleEntry{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		AxleNumber:   axleNumber,
		AxleType:     axleType,
		MaxAllowedKg: maxKg,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed axle entry: %v", err)
	}
	return e
}
