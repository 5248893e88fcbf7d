package model

import (
	"time"

	"github.com/lib/pq"
)

type Invoice struct {
	ID              int64         `db:"id" json:"id"`
	MedicalRecordID int64         `db:"medical_record_id" json:"medical_record_id"`
	IssuedAt        time.Time     `db:"issued_at" json:"issued_at"`
	TotalPrice      float64       `db:"total_price" json:"total_price"`
	ServiceIDs      pq.Int64Array `db:"service_ids" json:"service_ids"`
}

type CreateInvoiceRequest struct {
	MedicalRecordID int64   `json:"medical_record_id" binding:"required"`
	TotalPrice      float64 `json:"total_price" binding:"required,gte=0"`
	ServiceIDs      []int64 `json:"service_ids" binding:"required,min=1"`
}

// InvoiceSummary joins an invoice with the names and prices of its services,
// for the patient-facing invoice history.
type InvoiceSummary struct {
	ID              int64           `db:"id" json:"id"`
	MedicalRecordID int64           `db:"medical_record_id" json:"medical_record_id"`
	IssuedAt        time.Time       `db:"issued_at" json:"issued_at"`
	TotalPrice      float64         `db:"total_price" json:"total_price"`
	ServiceNames    pq.StringArray  `db:"service_names" json:"service_names"`
	ServicePrices   pq.Float64Array `db:"service_prices" json:"service_prices"`
}
