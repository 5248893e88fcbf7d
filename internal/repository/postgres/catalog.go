package postgres

import (
	"context"
	"fmt"

	"github.com/careflow/clinic-api/internal/model"
)

// Specialty, service and medicine repositories share the same flat CRUD
// shape; they live together to keep the catalog in one place.

func (r *specialtyRepository) List(ctx context.Context) ([]*model.Specialty, error) {
	var specialties []*model.Specialty
	query := "SELECT id, name, description, image FROM specialties ORDER BY id"
	if err := r.db.SelectContext(ctx, &specialties, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *specialtyRepository) Get(ctx context.Context, id int64) (*model.Specialty, error) {
	var specialty model.Specialty
	query := "SELECT id, name, description, image FROM specialties WHERE id = $1"
	if err := r.db.GetContext(ctx, &specialty, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &specialty, nil
}

func (r *specialtyRepository) Create(ctx context.Context, s *model.Specialty) error {
	query := "INSERT INTO specialties (name, description, image) VALUES ($1, $2, $3) RETURNING id"
	if err := r.db.GetContext(ctx, &s.ID, query, s.Name, s.Description, s.Image); err != nil {
		return fmt.Errorf("failed to create specialty: %w", err)
	}
	return nil
}

func (r *specialtyRepository) Update(ctx context.Context, s *model.Specialty) error {
	query := "UPDATE specialties SET name = $1, description = $2, image = $3 WHERE id = $4"
	return execExpectingRow(ctx, r.db, query, s.Name, s.Description, s.Image, s.ID)
}

func (r *specialtyRepository) Delete(ctx context.Context, id int64) error {
	return execExpectingRow(ctx, r.db, "DELETE FROM specialties WHERE id = $1", id)
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	var services []*model.Service
	query := "SELECT id, name, description, image, price FROM services ORDER BY id"
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) Get(ctx context.Context, id int64) (*model.Service, error) {
	var service model.Service
	query := "SELECT id, name, description, image, price FROM services WHERE id = $1"
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &service, nil
}

func (r *serviceRepository) Create(ctx context.Context, s *model.Service) (int64, error) {
	query := "INSERT INTO services (name, description, image, price) VALUES ($1, $2, $3, $4) RETURNING id"
	if err := r.db.GetContext(ctx, &s.ID, query, s.Name, s.Description, s.Image, s.Price); err != nil {
		return 0, fmt.Errorf("failed to create service: %w", err)
	}
	return s.ID, nil
}

func (r *serviceRepository) Update(ctx context.Context, s *model.Service) error {
	query := "UPDATE services SET name = $1, description = $2, image = $3, price = $4 WHERE id = $5"
	return execExpectingRow(ctx, r.db, query, s.Name, s.Description, s.Image, s.Price, s.ID)
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	return execExpectingRow(ctx, r.db, "DELETE FROM services WHERE id = $1", id)
}

const medicineColumns = "id, name, price, unit, description, manufacture_date, expiry_date, side_effects, dosage"

func (r *medicineRepository) List(ctx context.Context) ([]*model.Medicine, error) {
	var medicines []*model.Medicine
	query := fmt.Sprintf("SELECT %s FROM medicines ORDER BY id", medicineColumns)
	if err := r.db.SelectContext(ctx, &medicines, query); err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}

func (r *medicineRepository) Get(ctx context.Context, id int64) (*model.Medicine, error) {
	var medicine model.Medicine
	query := fmt.Sprintf("SELECT %s FROM medicines WHERE id = $1", medicineColumns)
	if err := r.db.GetContext(ctx, &medicine, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &medicine, nil
}

func (r *medicineRepository) Create(ctx context.Context, m *model.Medicine) error {
	query := `
		INSERT INTO medicines (
			name, price, unit, description, manufacture_date, expiry_date,
			side_effects, dosage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	if err := r.db.GetContext(ctx, &m.ID, query,
		m.Name, m.Price, m.Unit, m.Description,
		m.ManufactureDate, m.ExpiryDate, m.SideEffects, m.Dosage,
	); err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}

func (r *medicineRepository) Update(ctx context.Context, m *model.Medicine) error {
	query := `
		UPDATE medicines SET
			name = $1, price = $2, unit = $3, description = $4,
			manufacture_date = $5, expiry_date = $6, side_effects = $7, dosage = $8
		WHERE id = $9
	`
	return execExpectingRow(ctx, r.db, query,
		m.Name, m.Price, m.Unit, m.Description,
		m.ManufactureDate, m.ExpiryDate, m.SideEffects, m.Dosage, m.ID)
}

func (r *medicineRepository) Delete(ctx context.Context, id int64) error {
	return execExpectingRow(ctx, r.db, "DELETE FROM medicines WHERE id = $1", id)
}

func (r *medicineRepository) ListPrescriptions(ctx context.Context, medicalRecordID int64) ([]*model.Prescription, error) {
	var prescriptions []*model.Prescription
	query := "SELECT id, medical_record_id, medicine_ids, quantity FROM prescriptions WHERE medical_record_id = $1"
	if err := r.db.SelectContext(ctx, &prescriptions, query, medicalRecordID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (r *medicineRepository) CreatePrescription(ctx context.Context, p *model.Prescription) error {
	query := "INSERT INTO prescriptions (medical_record_id, medicine_ids, quantity) VALUES ($1, $2, $3) RETURNING id"
	if err := r.db.GetContext(ctx, &p.ID, query, p.MedicalRecordID, p.MedicineIDs, p.Quantity); err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}
