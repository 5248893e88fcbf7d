package model

import "time"

type Patient struct {
	ID        int64      `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	Name      string     `db:"name" json:"name"`
	Birthdate *time.Time `db:"birthdate" json:"birthdate,omitempty"`
	Gender    *string    `db:"gender" json:"gender,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

type UpdatePatientRequest struct {
	Name      *string `json:"name"`
	Birthdate *string `json:"birthdate"`
	Gender    *string `json:"gender"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
}

// PatientFilters drives the doctor-facing patient list.
type PatientFilters struct {
	Search    string `form:"search"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}
