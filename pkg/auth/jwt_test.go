package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/clinic-api/internal/model"
)

func testCredential() *model.Credential {
	specialty := int64(3)
	return &model.Credential{
		ID:           42,
		Email:        "grace@example.com",
		Name:         "Grace",
		SpecialtyID:  &specialty,
		PasswordHash: "irrelevant",
	}
}

func TestGenerateAndValidateRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, claims, err := svc.Generate(testCredential(), model.RoleDoctor)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "42", claims.Subject)

	parsed, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Grace", parsed.Name)
	assert.Equal(t, "doctor", parsed.Role)
	assert.Equal(t, "42", parsed.Subject)
	require.NotNil(t, parsed.SpecialtyID)
	assert.Equal(t, int64(3), *parsed.SpecialtyID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret-a", time.Hour).Generate(testCredential(), model.RolePatient)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	// The constructor clamps non-positive expiry, so build the service
	// directly to mint an already-expired token.
	svc := &jwtService{secret: []byte("test-secret"), expiry: -time.Minute}
	token, _, err := svc.Generate(testCredential(), model.RolePatient)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	_, err := svc.Validate("not.a.token")
	assert.Error(t, err)
}

func TestExpiryDefaultsWhenNonPositive(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	assert.Equal(t, 24*time.Hour, svc.Expiry())
}
