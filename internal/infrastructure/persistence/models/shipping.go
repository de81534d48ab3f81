package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appshipping "github.com/shopcore/backend/internal/application/shipping"
	"github.com/shopcore/backend/internal/domain/shipping"
)

// ShipmentModel is the persistence model for one shipment creation attempt
// and its lifecycle afterwards.
type ShipmentModel struct {
	ID              uuid.UUID             `gorm:"type:uuid;primary_key"`
	OrderID         string                `gorm:"type:varchar(100);not null;index:idx_shipments_order"`
	Provider        shipping.ProviderCode `gorm:"type:varchar(20);not null"`
	ServiceSelector string                `gorm:"type:varchar(50)"`
	Phase           appshipping.ShipmentPhase `gorm:"type:varchar(20);not null;default:'pending';index:idx_shipments_phase"`
	// TrackingNumber is empty until the vendor issues an AWB, so the unique
	// index must ignore empty values; a partial index does that in Postgres.
	TrackingNumber   string                  `gorm:"type:varchar(50);index:idx_shipments_awb"`
	VendorOrderID    string                  `gorm:"type:varchar(100)"`
	VendorShipmentID string                  `gorm:"type:varchar(100)"`
	CarrierName      string                  `gorm:"type:varchar(100)"`
	Status           shipping.ShipmentStatus `gorm:"type:varchar(30);not null;default:'PENDING'"`
	Cost             decimal.Decimal         `gorm:"type:decimal(12,2);not null;default:0"`
	LabelURL         string                  `gorm:"type:text"`
	LabelArchiveKey  string                  `gorm:"type:varchar(255)"`
	FailureReason    string                  `gorm:"type:text"`
	CreatedAt        time.Time               `gorm:"not null"`
	UpdatedAt        time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToRecord converts the persistence model to the application-layer record.
func (m *ShipmentModel) ToRecord() *appshipping.ShipmentRecord {
	return &appshipping.ShipmentRecord{
		ID:               m.ID,
		OrderID:          m.OrderID,
		Provider:         m.Provider,
		ServiceSelector:  m.ServiceSelector,
		Phase:            m.Phase,
		TrackingNumber:   m.TrackingNumber,
		VendorOrderID:    m.VendorOrderID,
		VendorShipmentID: m.VendorShipmentID,
		CarrierName:      m.CarrierName,
		Status:           m.Status,
		Cost:             m.Cost,
		LabelURL:         m.LabelURL,
		LabelArchiveKey:  m.LabelArchiveKey,
		FailureReason:    m.FailureReason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromRecord populates the persistence model from the application-layer record.
func (m *ShipmentModel) FromRecord(r *appshipping.ShipmentRecord) {
	m.ID = r.ID
	m.OrderID = r.OrderID
	m.Provider = r.Provider
	m.ServiceSelector = r.ServiceSelector
	m.Phase = r.Phase
	m.TrackingNumber = r.TrackingNumber
	m.VendorOrderID = r.VendorOrderID
	m.VendorShipmentID = r.VendorShipmentID
	m.CarrierName = r.CarrierName
	m.Status = r.Status
	m.Cost = r.Cost
	m.LabelURL = r.LabelURL
	m.LabelArchiveKey = r.LabelArchiveKey
	m.FailureReason = r.FailureReason
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}
