package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
)

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) (int64, error) {
	query := `
		INSERT INTO medical_records (
			appointment_id, patient_id, doctor_id, diagnosis, payment_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	record.CreatedAt = time.Now()
	record.PaymentStatus = model.PaymentStatusUnpaid

	if err := r.db.GetContext(ctx, &record.ID, query,
		record.AppointmentID,
		record.PatientID,
		record.DoctorID,
		record.Diagnosis,
		record.PaymentStatus,
		record.CreatedAt,
	); err != nil {
		return 0, fmt.Errorf("failed to create medical record: %w", err)
	}
	return record.ID, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, diagnosis, payment_status, created_at
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var records []*model.MedicalRecord
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

func (r *medicalRecordRepository) MarkPaid(ctx context.Context, id int64) error {
	query := "UPDATE medical_records SET payment_status = $1 WHERE id = $2"
	return execExpectingRow(ctx, r.db, query, model.PaymentStatusPaid, id)
}

func (r *invoiceRepository) Create(ctx context.Context, inv *model.Invoice) error {
	query := `
		INSERT INTO invoices (medical_record_id, issued_at, total_price, service_ids)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now()
	}
	if err := r.db.GetContext(ctx, &inv.ID, query,
		inv.MedicalRecordID, inv.IssuedAt, inv.TotalPrice, inv.ServiceIDs,
	); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) ListByMedicalRecord(ctx context.Context, medicalRecordID int64) ([]*model.Invoice, error) {
	query := `
		SELECT id, medical_record_id, issued_at, total_price, service_ids
		FROM invoices
		WHERE medical_record_id = $1
		ORDER BY issued_at DESC
	`
	var invoices []*model.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, medicalRecordID); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.InvoiceSummary, error) {
	query := `
		SELECT
			i.id,
			i.medical_record_id,
			i.issued_at,
			i.total_price,
			array_agg(s.name) AS service_names,
			array_agg(s.price) AS service_prices
		FROM invoices i
		JOIN medical_records mr ON i.medical_record_id = mr.id
		LEFT JOIN services s ON s.id = ANY(i.service_ids)
		WHERE mr.patient_id = $1
		GROUP BY i.id, i.medical_record_id, i.issued_at, i.total_price
		ORDER BY i.issued_at DESC
	`
	var invoices []*model.InvoiceSummary
	if err := r.db.SelectContext(ctx, &invoices, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// execExpectingRow runs a statement that must touch exactly one row and
// translates zero rows affected to ErrNotFound.
func execExpectingRow(ctx context.Context, db *sqlx.DB, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("statement failed: %w", err)
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
