package model

import (
	"time"

	"github.com/lib/pq"
)

// Medical record payment status values.
const (
	PaymentStatusUnpaid = 0
	PaymentStatusPaid   = 1
)

type MedicalRecord struct {
	ID            int64     `db:"id" json:"id"`
	AppointmentID int64     `db:"appointment_id" json:"appointment_id"`
	PatientID     int64     `db:"patient_id" json:"patient_id"`
	DoctorID      int64     `db:"doctor_id" json:"doctor_id"`
	Diagnosis     *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	PaymentStatus int       `db:"payment_status" json:"payment_status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type CreateMedicalRecordRequest struct {
	AppointmentID int64   `json:"appointment_id" binding:"required"`
	PatientID     int64   `json:"patient_id" binding:"required"`
	DoctorID      int64   `json:"doctor_id" binding:"required"`
	Diagnosis     *string `json:"diagnosis"`
}

// Prescription is the medicine line set attached to a medical record.
type Prescription struct {
	ID              int64         `db:"id" json:"id"`
	MedicalRecordID int64         `db:"medical_record_id" json:"medical_record_id"`
	MedicineIDs     pq.Int64Array `db:"medicine_ids" json:"medicine_ids"`
	Quantity        pq.Int64Array `db:"quantity" json:"quantity"`
}

type CreatePrescriptionRequest struct {
	MedicalRecordID int64   `json:"medical_record_id" binding:"required"`
	MedicineIDs     []int64 `json:"medicine_ids" binding:"required,min=1"`
	Quantity        []int64 `json:"quantity" binding:"required,min=1"`
}
