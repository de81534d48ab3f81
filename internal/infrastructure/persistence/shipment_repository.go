package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appshipping "github.com/shopcore/backend/internal/application/shipping"
	"github.com/shopcore/backend/internal/domain/shipping"
	"github.com/shopcore/backend/internal/infrastructure/persistence/models"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// Save inserts a new shipment record
func (r *GormShipmentRepository) Save(ctx context.Context, record *appshipping.ShipmentRecord) error {
	var model models.ShipmentModel
	model.FromRecord(record)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists the full state of an existing record
func (r *GormShipmentRepository) Update(ctx context.Context, record *appshipping.ShipmentRecord) error {
	var model models.ShipmentModel
	model.FromRecord(record)
	return r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "created_at").
		Updates(&model).Error
}

// FindByID finds a shipment record by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appshipping.ShipmentRecord, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appshipping.ErrShipmentRecordNotFound
		}
		return nil, err
	}
	return model.ToRecord(), nil
}

// FindByTrackingNumber finds a shipment record by its AWB
func (r *GormShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*appshipping.ShipmentRecord, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "tracking_number = ?", trackingNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appshipping.ErrShipmentRecordNotFound
		}
		return nil, err
	}
	return model.ToRecord(), nil
}

// FindByOrderID finds all shipment records for an order, newest first
func (r *GormShipmentRepository) FindByOrderID(ctx context.Context, orderID string) ([]*appshipping.ShipmentRecord, error) {
	var shipmentModels []models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&shipmentModels).Error; err != nil {
		return nil, err
	}

	records := make([]*appshipping.ShipmentRecord, len(shipmentModels))
	for i := range shipmentModels {
		records[i] = shipmentModels[i].ToRecord()
	}
	return records, nil
}

// UpdateStatus records the latest webhook-reported status for a tracking
// number. An unknown tracking number is not an error: carriers push events
// for shipments booked outside this system too.
func (r *GormShipmentRepository) UpdateStatus(ctx context.Context, trackingNumber string, status shipping.ShipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("tracking_number = ?", trackingNumber).
		Update("status", status).Error
}

// Ensure GormShipmentRepository implements the application port
var _ appshipping.ShipmentRepository = (*GormShipmentRepository)(nil)
