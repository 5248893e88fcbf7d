package model

import "time"

// Appointment billing / clinical lifecycle tags. Both are free text in
// storage; these are the values the API writes.
const (
	AppointmentStatusUnpaid = "Unpaid"
	AppointmentStatusPaid   = "Paid"

	TreatmentStatusScheduled  = "scheduled"
	TreatmentStatusInProgress = "in_progress"
	TreatmentStatusDone       = "done"
)

// Appointment is one per-day, per-specialty queue entry. The patient_*
// fields are snapshots captured at booking time; later edits to the patient
// record deliberately do not flow back into them.
type Appointment struct {
	ID               int64     `db:"id" json:"id"`
	PatientID        int64     `db:"patient_id" json:"patient_id"`
	PatientName      string    `db:"patient_name" json:"patient_name"`
	PatientBirthdate time.Time `db:"patient_birthdate" json:"patient_birthdate"`
	PatientPhone     string    `db:"patient_phone" json:"patient_phone"`
	Reason           string    `db:"reason" json:"reason"`
	SpecialtyID      *int64    `db:"specialty_id" json:"specialty_id,omitempty"`
	Date             time.Time `db:"visit_date" json:"date"`
	QueuePosition    int       `db:"queue_position" json:"queue_position"`
	SlotTime         string    `db:"slot_time" json:"slot_time"`
	Status           string    `db:"status" json:"status"`
	TreatmentStatus  string    `db:"treatment_status" json:"treatment_status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type BookAppointmentRequest struct {
	PatientID        int64  `json:"patient_id" binding:"required"`
	PatientName      string `json:"patient_name" binding:"required"`
	PatientBirthdate string `json:"patient_birthdate" binding:"required"`
	PatientPhone     string `json:"patient_phone" binding:"required"`
	Reason           string `json:"reason" binding:"max=1000"`
	SpecialtyID      *int64 `json:"specialty_id"`
	Date             string `json:"date" binding:"required"`
}

// Slot is what the allocator hands back: the queue position and its derived
// clock time.
type Slot struct {
	QueuePosition int    `json:"queue_position"`
	SlotTime      string `json:"slot_time"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateTreatmentStatusRequest struct {
	TreatmentStatus string `json:"treatment_status" binding:"required"`
}
