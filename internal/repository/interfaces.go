package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careflow/clinic-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row. Callers must be able
// to tell this apart from a storage failure.
var ErrNotFound = errors.New("not found")

// ErrPositionTaken is returned when an appointment insert loses the race for
// a queue position; the caller recounts and retries.
var ErrPositionTaken = errors.New("queue position already taken")

// ErrDuplicateEmail is returned when an insert collides with an existing
// email in the same role table.
var ErrDuplicateEmail = errors.New("email already registered")

// All repository interfaces in one file
type (
	// CredentialRepository dispatches to the role table owning a login type.
	CredentialRepository interface {
		FindByEmail(ctx context.Context, role model.Role, email string) (*model.Credential, error)
		FindByID(ctx context.Context, role model.Role, id int64) (*model.Credential, error)
		Insert(ctx context.Context, role model.Role, cred *model.Credential) error
		UpdatePassword(ctx context.Context, role model.Role, email, passwordHash string) error
		EmailExists(ctx context.Context, role model.Role, email string) (bool, error)
		UpdateDoctorSpecialty(ctx context.Context, email string, specialtyID int64) error
	}

	AppointmentRepository interface {
		CountForDay(ctx context.Context, date time.Time, specialtyID *int64) (int, error)
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.Appointment, error)
		ListBySpecialty(ctx context.Context, specialtyID int64) ([]*model.Appointment, error)
		UpdateStatus(ctx context.Context, id int64, status string) error
		UpdateTreatmentStatus(ctx context.Context, id int64, status string) error
	}

	PatientRepository interface {
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByPhone(ctx context.Context, phone string) (*model.Patient, error)
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
	}

	SpecialtyRepository interface {
		List(ctx context.Context) ([]*model.Specialty, error)
		Get(ctx context.Context, id int64) (*model.Specialty, error)
		Create(ctx context.Context, s *model.Specialty) error
		Update(ctx context.Context, s *model.Specialty) error
		Delete(ctx context.Context, id int64) error
	}

	ServiceRepository interface {
		List(ctx context.Context) ([]*model.Service, error)
		Get(ctx context.Context, id int64) (*model.Service, error)
		Create(ctx context.Context, s *model.Service) (int64, error)
		Update(ctx context.Context, s *model.Service) error
		Delete(ctx context.Context, id int64) error
	}

	MedicineRepository interface {
		List(ctx context.Context) ([]*model.Medicine, error)
		Get(ctx context.Context, id int64) (*model.Medicine, error)
		Create(ctx context.Context, m *model.Medicine) error
		Update(ctx context.Context, m *model.Medicine) error
		Delete(ctx context.Context, id int64) error
		ListPrescriptions(ctx context.Context, medicalRecordID int64) ([]*model.Prescription, error)
		CreatePrescription(ctx context.Context, p *model.Prescription) error
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, r *model.MedicalRecord) (int64, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error)
		MarkPaid(ctx context.Context, id int64) error
	}

	InvoiceRepository interface {
		Create(ctx context.Context, inv *model.Invoice) error
		ListByMedicalRecord(ctx context.Context, medicalRecordID int64) ([]*model.Invoice, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.InvoiceSummary, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, lastError *string) error
	}
)
