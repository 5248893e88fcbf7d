package patient

import (
	"context"
	"errors"
	"time"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

// Service exposes the patient demographics directory.
type Service interface {
	Get(ctx context.Context, id int64) (*model.Patient, error)
	GetByPhone(ctx context.Context, phone string) (*model.Patient, error)
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
}

type service struct {
	patients repository.PatientRepository
}

func NewService(patients repository.PatientRepository) Service {
	return &service{patients: patients}
}

func (s *service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Storage(err)
	}
	return patient, nil
}

func (s *service) GetByPhone(ctx context.Context, phone string) (*model.Patient, error) {
	patient, err := s.patients.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Storage(err)
	}
	return patient, nil
}

func (s *service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.patients.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return patients, nil
}

func (s *service) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if req.Birthdate != nil {
		if _, err := time.Parse("2006-01-02", *req.Birthdate); err != nil {
			return nil, apperrors.BadRequest("birthdate must be formatted as YYYY-MM-DD", err)
		}
	}

	patient, err := s.patients.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient")
		}
		return nil, apperrors.Storage(err)
	}
	return patient, nil
}
