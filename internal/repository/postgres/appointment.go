package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
)

const appointmentColumns = `
	id, patient_id, patient_name, patient_birthdate, patient_phone, reason,
	specialty_id, visit_date, queue_position, slot_time, status,
	treatment_status, created_at, updated_at
`

// CountForDay counts bookings for a calendar day. With a specialty the count
// is scoped to (date, specialty); without one it is scoped by date only,
// never unscoped.
func (r *appointmentRepository) CountForDay(ctx context.Context, date time.Time, specialtyID *int64) (int, error) {
	var (
		count int
		err   error
	)
	if specialtyID != nil {
		query := `SELECT COUNT(*) FROM appointments WHERE visit_date = $1 AND specialty_id = $2`
		err = r.db.GetContext(ctx, &count, query, date, *specialtyID)
	} else {
		query := `SELECT COUNT(*) FROM appointments WHERE visit_date = $1`
		err = r.db.GetContext(ctx, &count, query, date)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

// Create inserts a booking. The (visit_date, specialty_id, queue_position)
// unique index is the backstop against two racing allocations computing the
// same position; losers get ErrPositionTaken and recount.
func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			patient_id, patient_name, patient_birthdate, patient_phone, reason,
			specialty_id, visit_date, queue_position, slot_time, status,
			treatment_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	err := r.db.GetContext(ctx, &appointment.ID, query,
		appointment.PatientID,
		appointment.PatientName,
		appointment.PatientBirthdate,
		appointment.PatientPhone,
		appointment.Reason,
		appointment.SpecialtyID,
		appointment.Date,
		appointment.QueuePosition,
		appointment.SlotTime,
		appointment.Status,
		appointment.TreatmentStatus,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "appointments_day_slot_key") {
			return repository.ErrPositionTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE patient_id = $1
		ORDER BY visit_date DESC, queue_position ASC
	`, appointmentColumns)

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBySpecialty(ctx context.Context, specialtyID int64) ([]*model.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE specialty_id = $1
		ORDER BY visit_date ASC, queue_position ASC
	`, appointmentColumns)

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, specialtyID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.updateTag(ctx, id, "status", status)
}

func (r *appointmentRepository) UpdateTreatmentStatus(ctx context.Context, id int64, status string) error {
	return r.updateTag(ctx, id, "treatment_status", status)
}

func (r *appointmentRepository) updateTag(ctx context.Context, id int64, column, value string) error {
	query := fmt.Sprintf("UPDATE appointments SET %s = $1, updated_at = $2 WHERE id = $3", column)
	result, err := r.db.ExecContext(ctx, query, value, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
