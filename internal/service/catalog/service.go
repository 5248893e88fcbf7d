package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
)

const specialtyCacheKey = "specialties"

// Service serves the clinic's reference data: specialties, billable
// services, and the medicine formulary. The specialty list is read on almost
// every booking screen, so it sits behind a short-lived cache that mutations
// invalidate.
type Service interface {
	ListSpecialties(ctx context.Context) ([]*model.Specialty, error)
	GetSpecialty(ctx context.Context, id int64) (*model.Specialty, error)
	CreateSpecialty(ctx context.Context, req *model.SpecialtyRequest) (*model.Specialty, error)
	UpdateSpecialty(ctx context.Context, id int64, req *model.SpecialtyRequest) (*model.Specialty, error)
	DeleteSpecialty(ctx context.Context, id int64) error

	ListServices(ctx context.Context) ([]*model.Service, error)
	GetService(ctx context.Context, id int64) (*model.Service, error)
	CreateService(ctx context.Context, req *model.ServiceRequest) (*model.Service, error)
	UpdateService(ctx context.Context, id int64, req *model.ServiceRequest) (*model.Service, error)
	DeleteService(ctx context.Context, id int64) error

	ListMedicines(ctx context.Context) ([]*model.Medicine, error)
	GetMedicine(ctx context.Context, id int64) (*model.Medicine, error)
	CreateMedicine(ctx context.Context, req *model.MedicineRequest) (*model.Medicine, error)
	UpdateMedicine(ctx context.Context, id int64, req *model.MedicineRequest) (*model.Medicine, error)
	DeleteMedicine(ctx context.Context, id int64) error
}

type service struct {
	specialties repository.SpecialtyRepository
	services    repository.ServiceRepository
	medicines   repository.MedicineRepository
	cache       *cache.Cache
}

func NewService(
	specialties repository.SpecialtyRepository,
	services repository.ServiceRepository,
	medicines repository.MedicineRepository,
) Service {
	return &service{
		specialties: specialties,
		services:    services,
		medicines:   medicines,
		cache:       cache.New(5*time.Minute, 10*time.Minute),
	}
}

func mapErr(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return apperrors.Storage(err)
}

func (s *service) ListSpecialties(ctx context.Context) ([]*model.Specialty, error) {
	if cached, ok := s.cache.Get(specialtyCacheKey); ok {
		return cached.([]*model.Specialty), nil
	}
	specialties, err := s.specialties.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	s.cache.SetDefault(specialtyCacheKey, specialties)
	return specialties, nil
}

func (s *service) GetSpecialty(ctx context.Context, id int64) (*model.Specialty, error) {
	specialty, err := s.specialties.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err, "specialty")
	}
	return specialty, nil
}

func (s *service) CreateSpecialty(ctx context.Context, req *model.SpecialtyRequest) (*model.Specialty, error) {
	specialty := &model.Specialty{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}
	if err := s.specialties.Create(ctx, specialty); err != nil {
		return nil, apperrors.Storage(err)
	}
	s.cache.Delete(specialtyCacheKey)
	return specialty, nil
}

func (s *service) UpdateSpecialty(ctx context.Context, id int64, req *model.SpecialtyRequest) (*model.Specialty, error) {
	specialty := &model.Specialty{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	}
	if err := s.specialties.Update(ctx, specialty); err != nil {
		return nil, mapErr(err, "specialty")
	}
	s.cache.Delete(specialtyCacheKey)
	return specialty, nil
}

func (s *service) DeleteSpecialty(ctx context.Context, id int64) error {
	if err := s.specialties.Delete(ctx, id); err != nil {
		return mapErr(err, "specialty")
	}
	s.cache.Delete(specialtyCacheKey)
	return nil
}

func (s *service) ListServices(ctx context.Context) ([]*model.Service, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return services, nil
}

func (s *service) GetService(ctx context.Context, id int64) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err, "service")
	}
	return svc, nil
}

func (s *service) CreateService(ctx context.Context, req *model.ServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	}
	id, err := s.services.Create(ctx, svc)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	svc.ID = id
	return svc, nil
}

func (s *service) UpdateService(ctx context.Context, id int64, req *model.ServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	}
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, mapErr(err, "service")
	}
	return svc, nil
}

func (s *service) DeleteService(ctx context.Context, id int64) error {
	if err := s.services.Delete(ctx, id); err != nil {
		return mapErr(err, "service")
	}
	return nil
}

func (s *service) ListMedicines(ctx context.Context) ([]*model.Medicine, error) {
	medicines, err := s.medicines.List(ctx)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return medicines, nil
}

func (s *service) GetMedicine(ctx context.Context, id int64) (*model.Medicine, error) {
	medicine, err := s.medicines.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err, "medicine")
	}
	return medicine, nil
}

func (s *service) CreateMedicine(ctx context.Context, req *model.MedicineRequest) (*model.Medicine, error) {
	medicine := medicineFromRequest(0, req)
	if err := s.medicines.Create(ctx, medicine); err != nil {
		return nil, apperrors.Storage(err)
	}
	return medicine, nil
}

func (s *service) UpdateMedicine(ctx context.Context, id int64, req *model.MedicineRequest) (*model.Medicine, error) {
	medicine := medicineFromRequest(id, req)
	if err := s.medicines.Update(ctx, medicine); err != nil {
		return nil, mapErr(err, "medicine")
	}
	return medicine, nil
}

func (s *service) DeleteMedicine(ctx context.Context, id int64) error {
	if err := s.medicines.Delete(ctx, id); err != nil {
		return mapErr(err, "medicine")
	}
	return nil
}

func medicineFromRequest(id int64, req *model.MedicineRequest) *model.Medicine {
	return &model.Medicine{
		ID:              id,
		Name:            req.Name,
		Price:           req.Price,
		Unit:            req.Unit,
		Description:     req.Description,
		ManufactureDate: req.ManufactureDate,
		ExpiryDate:      req.ExpiryDate,
		SideEffects:     req.SideEffects,
		Dosage:          req.Dosage,
	}
}
