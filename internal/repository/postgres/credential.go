package postgres

import (
	"context"
	"fmt"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
)

// roleTable binds a login type to the table holding its credentials. Only
// the doctor table carries a specialty column.
type roleTable struct {
	name         string
	hasSpecialty bool
}

var roleTables = map[model.Role]roleTable{
	model.RolePatient:      {name: "patients"},
	model.RoleDoctor:       {name: "doctors", hasSpecialty: true},
	model.RoleReceptionist: {name: "receptionists"},
	model.RoleStaff:        {name: "staff"},
	model.RoleAdmin:        {name: "admins"},
}

func tableFor(role model.Role) (roleTable, error) {
	t, ok := roleTables[role]
	if !ok {
		return roleTable{}, fmt.Errorf("no credential table for role %q", role)
	}
	return t, nil
}

func (t roleTable) columns() string {
	if t.hasSpecialty {
		return "id, email, password, name, specialty_id"
	}
	return "id, email, password, name"
}

func (r *credentialRepository) FindByEmail(ctx context.Context, role model.Role, email string) (*model.Credential, error) {
	t, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = $1", t.columns(), t.name)
	var cred model.Credential
	if err := r.db.GetContext(ctx, &cred, query, email); err != nil {
		return nil, mapNotFound(err)
	}
	return &cred, nil
}

func (r *credentialRepository) FindByID(ctx context.Context, role model.Role, id int64) (*model.Credential, error) {
	t, err := tableFor(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.columns(), t.name)
	var cred model.Credential
	if err := r.db.GetContext(ctx, &cred, query, id); err != nil {
		return nil, mapNotFound(err)
	}
	return &cred, nil
}

func (r *credentialRepository) Insert(ctx context.Context, role model.Role, cred *model.Credential) error {
	t, err := tableFor(role)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (email, password, name) VALUES ($1, $2, $3) RETURNING id", t.name)
	if err := r.db.GetContext(ctx, &cred.ID, query, cred.Email, cred.PasswordHash, cred.Name); err != nil {
		if isUniqueViolation(err, "") {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) UpdatePassword(ctx context.Context, role model.Role, email, passwordHash string) error {
	t, err := tableFor(role)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET password = $1 WHERE email = $2 RETURNING id", t.name)
	var id int64
	if err := r.db.GetContext(ctx, &id, query, passwordHash, email); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func (r *credentialRepository) EmailExists(ctx context.Context, role model.Role, email string) (bool, error) {
	t, err := tableFor(role)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE email = $1)", t.name)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *credentialRepository) UpdateDoctorSpecialty(ctx context.Context, email string, specialtyID int64) error {
	query := "UPDATE doctors SET specialty_id = $1 WHERE email = $2 RETURNING id"
	var id int64
	if err := r.db.GetContext(ctx, &id, query, specialtyID, email); err != nil {
		return mapNotFound(err)
	}
	return nil
}
