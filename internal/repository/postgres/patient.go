package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careflow/clinic-api/internal/model"
)

const patientColumns = "id, email, name, birthdate, gender, address, phone, created_at, updated_at"

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE id = $1", patientColumns)
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByPhone(ctx context.Context, phone string) (*model.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients WHERE phone = $1", patientColumns)
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, phone); err != nil {
		return nil, mapNotFound(err)
	}
	return &patient, nil
}

// sortable columns for the doctor-facing list; anything else falls back to id.
var patientSortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"birthdate": "birthdate",
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := fmt.Sprintf("SELECT %s FROM patients", patientColumns)
	args := []interface{}{}
	argCount := 1

	if filters.Search != "" {
		query += fmt.Sprintf(" WHERE (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", argCount, argCount, argCount)
		args = append(args, "%"+filters.Search+"%")
		argCount++
	}

	orderBy, ok := patientSortColumns[filters.OrderBy]
	if !ok {
		orderBy = "id"
	}
	dir := "ASC"
	if strings.EqualFold(filters.OrderDir, "desc") {
		dir = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, dir)

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, filters.Offset)

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}
	argCount := 2

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.Name != nil {
		appendSet("name", *req.Name)
	}
	if req.Birthdate != nil {
		appendSet("birthdate", *req.Birthdate)
	}
	if req.Gender != nil {
		appendSet("gender", *req.Gender)
	}
	if req.Address != nil {
		appendSet("address", *req.Address)
	}
	if req.Phone != nil {
		appendSet("phone", *req.Phone)
	}

	query := fmt.Sprintf(
		"UPDATE patients SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), argCount, patientColumns)
	args = append(args, id)

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &patient, nil
}
