package model

import "time"

type Specialty struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Image       *string `db:"image" json:"image,omitempty"`
}

type Service struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Image       *string `db:"image" json:"image,omitempty"`
	Price       float64 `db:"price" json:"price"`
}

type Medicine struct {
	ID              int64      `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Price           float64    `db:"price" json:"price"`
	Unit            *string    `db:"unit" json:"unit,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	ManufactureDate *time.Time `db:"manufacture_date" json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	SideEffects     *string    `db:"side_effects" json:"side_effects,omitempty"`
	Dosage          *string    `db:"dosage" json:"dosage,omitempty"`
}

type SpecialtyRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type ServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Price       float64 `json:"price" binding:"required,gte=0"`
}

type MedicineRequest struct {
	Name            string     `json:"name" binding:"required"`
	Price           float64    `json:"price" binding:"gte=0"`
	Unit            *string    `json:"unit"`
	Description     *string    `json:"description"`
	ManufactureDate *time.Time `json:"manufacture_date"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	SideEffects     *string    `json:"side_effects"`
	Dosage          *string    `json:"dosage"`
}
