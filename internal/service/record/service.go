package record

import (
	"context"
	"errors"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

// Service manages the clinical side of a visit: the medical record a doctor
// writes up and the prescription attached to it.
type Service interface {
	CreateRecord(ctx context.Context, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error)
	MarkPaid(ctx context.Context, id int64) error
	CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	ListPrescriptions(ctx context.Context, medicalRecordID int64) ([]*model.Prescription, error)
}

type service struct {
	records      repository.MedicalRecordRepository
	medicines    repository.MedicineRepository
	appointments repository.AppointmentRepository
}

func NewService(
	records repository.MedicalRecordRepository,
	medicines repository.MedicineRepository,
	appointments repository.AppointmentRepository,
) Service {
	return &service{records: records, medicines: medicines, appointments: appointments}
}

func (s *service) CreateRecord(ctx context.Context, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	// The appointment must exist; the record references it permanently.
	if _, err := s.appointments.Get(ctx, req.AppointmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, apperrors.Storage(err)
	}

	rec := &model.MedicalRecord{
		AppointmentID: req.AppointmentID,
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		Diagnosis:     req.Diagnosis,
		PaymentStatus: model.PaymentStatusUnpaid,
	}
	id, err := s.records.Create(ctx, rec)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	rec.ID = id
	return rec, nil
}

func (s *service) ListByPatient(ctx context.Context, patientID int64) ([]*model.MedicalRecord, error) {
	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return records, nil
}

func (s *service) MarkPaid(ctx context.Context, id int64) error {
	if err := s.records.MarkPaid(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("medical record")
		}
		return apperrors.Storage(err)
	}
	return nil
}

func (s *service) CreatePrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if len(req.MedicineIDs) != len(req.Quantity) {
		return nil, apperrors.BadRequest("medicine_ids and quantity must have the same length", nil)
	}
	for _, q := range req.Quantity {
		if q <= 0 {
			return nil, apperrors.BadRequest("quantity entries must be positive", nil)
		}
	}

	p := &model.Prescription{
		MedicalRecordID: req.MedicalRecordID,
		MedicineIDs:     req.MedicineIDs,
		Quantity:        req.Quantity,
	}
	if err := s.medicines.CreatePrescription(ctx, p); err != nil {
		return nil, apperrors.Storage(err)
	}
	return p, nil
}

func (s *service) ListPrescriptions(ctx context.Context, medicalRecordID int64) ([]*model.Prescription, error) {
	prescriptions, err := s.medicines.ListPrescriptions(ctx, medicalRecordID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return prescriptions, nil
}
