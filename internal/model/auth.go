package model

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/careflow/clinic-api/pkg/errors"
)

// Role is the closed set of login types. Each role owns exactly one
// credential table.
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RoleStaff        Role = "staff"
	RoleAdmin        Role = "admin"
)

// RoleScanOrder is the priority used when resolving which role owns an
// email. An email present in several tables resolves to the earliest match.
var RoleScanOrder = []Role{RolePatient, RoleDoctor, RoleReceptionist, RoleStaff, RoleAdmin}

// ParseRole validates a claimed login type against the closed enumeration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleReceptionist, RoleStaff, RoleAdmin:
		return Role(s), nil
	}
	return "", errors.UnsupportedRole(s)
}

func (r Role) String() string { return string(r) }

// Credential is one row of a role table. Only the doctor table carries a
// specialty reference; SpecialtyID stays nil for every other role.
type Credential struct {
	ID           int64  `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password"`
	Name         string `db:"name"`
	SpecialtyID  *int64 `db:"specialty_id"`
}

// Claims is the session token payload. Subject is the stringified credential
// id; Role is the login type the caller authenticated as. Claims stay valid
// until expiry regardless of later password changes (no revocation list).
type Claims struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	SpecialtyID *int64 `json:"specialty_id,omitempty"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	LoginType string `json:"login_type" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Role        string `json:"role" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"required"`
	SpecialtyID *int64 `json:"specialty_id"`
}

type ResetPasswordRequest struct {
	Role  string `json:"role" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ChangePasswordRequest changes the password for Email. Role is only
// consulted for admin-issued changes on someone else's account; everyone
// else is pinned to their own role table and must supply CurrentPassword.
type ChangePasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Role            string `json:"role"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type TokenData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserData struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	SpecialtyID *int64 `json:"specialty_id,omitempty"`
}

// Session is the authenticate() result: the signed token plus the claims it
// encodes, echoed back for the client.
type Session struct {
	Token TokenData `json:"token"`
	User  UserData  `json:"user"`
}
