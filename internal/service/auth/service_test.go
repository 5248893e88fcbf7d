package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	pkgauth "github.com/careflow/clinic-api/pkg/auth"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
	"github.com/careflow/clinic-api/pkg/logger"
	"github.com/careflow/clinic-api/pkg/security"
)

// fakeCredentialRepo keeps one in-memory table per role, mirroring the
// per-role uniqueness of the real schema.
type fakeCredentialRepo struct {
	mu     sync.Mutex
	nextID int64
	tables map[model.Role]map[string]*model.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	tables := make(map[model.Role]map[string]*model.Credential)
	for _, role := range model.RoleScanOrder {
		tables[role] = make(map[string]*model.Credential)
	}
	return &fakeCredentialRepo{tables: tables}
}

func (f *fakeCredentialRepo) FindByEmail(_ context.Context, role model.Role, email string) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.tables[role][email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *cred
	return &copied, nil
}

func (f *fakeCredentialRepo) FindByID(_ context.Context, role model.Role, id int64) (*model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cred := range f.tables[role] {
		if cred.ID == id {
			copied := *cred
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCredentialRepo) Insert(_ context.Context, role model.Role, cred *model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tables[role][cred.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	f.nextID++
	cred.ID = f.nextID
	stored := *cred
	f.tables[role][cred.Email] = &stored
	return nil
}

func (f *fakeCredentialRepo) UpdatePassword(_ context.Context, role model.Role, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.tables[role][email]
	if !ok {
		return repository.ErrNotFound
	}
	cred.PasswordHash = passwordHash
	return nil
}

func (f *fakeCredentialRepo) EmailExists(_ context.Context, role model.Role, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tables[role][email]
	return ok, nil
}

func (f *fakeCredentialRepo) UpdateDoctorSpecialty(_ context.Context, email string, specialtyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.tables[model.RoleDoctor][email]
	if !ok {
		return repository.ErrNotFound
	}
	cred.SpecialtyID = &specialtyID
	return nil
}

type fakeMailer struct {
	mu        sync.Mutex
	sent      []string
	lastBody  string
	failSends bool
}

func (f *fakeMailer) SendTemporaryPassword(_ context.Context, to, tempPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSends {
		return errors.New("smtp connection refused")
	}
	f.sent = append(f.sent, to)
	f.lastBody = tempPassword
	return nil
}

func (f *fakeMailer) SendCustom(_ context.Context, to, _, _ string) error {
	return f.SendTemporaryPassword(context.Background(), to, "")
}

func newTestService(repo *fakeCredentialRepo, mailer *fakeMailer) Service {
	tokens := pkgauth.NewJWTService("test-secret", time.Hour)
	hasher := security.NewBcryptHasher(4)
	return NewService(repo, tokens, hasher, mailer, logger.NewLogger(nil))
}

func register(t *testing.T, svc Service, role, email, password string) *model.UserData {
	t.Helper()
	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Role:     role,
		Email:    email,
		Password: password,
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	register(t, svc, "patient", "ada@example.com", "hunter2hunter2")

	session, err := svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient",
		Email:     "ada@example.com",
		Password:  "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token.AccessToken)
	assert.Equal(t, "Bearer", session.Token.TokenType)
	assert.Equal(t, "patient", session.User.Role)
}

func TestLoginHidesWhetherEmailExists(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	register(t, svc, "patient", "ada@example.com", "hunter2hunter2")

	_, unknownEmailErr := svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient",
		Email:     "nobody@example.com",
		Password:  "hunter2hunter2",
	})
	_, wrongPasswordErr := svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient",
		Email:     "ada@example.com",
		Password:  "wrong-password",
	})

	require.Error(t, unknownEmailErr)
	require.Error(t, wrongPasswordErr)
	// Same code and same message either way, or callers can probe accounts.
	assert.Equal(t, unknownEmailErr.Error(), wrongPasswordErr.Error())
	a, _ := apperrors.AsAppError(unknownEmailErr)
	b, _ := apperrors.AsAppError(wrongPasswordErr)
	assert.Equal(t, apperrors.CodeInvalidCredentials, a.Code)
	assert.Equal(t, apperrors.CodeInvalidCredentials, b.Code)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "superuser",
		Email:     "ada@example.com",
		Password:  "whatever12345",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnsupportedRole, appErr.Code)
}

func TestLoginIsScopedToRoleTable(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	register(t, svc, "doctor", "grace@example.com", "hunter2hunter2")

	// Right password, wrong table.
	_, err := svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient",
		Email:     "grace@example.com",
		Password:  "hunter2hunter2",
	})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidCredentials, appErr.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	register(t, svc, "patient", "ada@example.com", "hunter2hunter2")

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Role:     "patient",
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
		Name:     "Ada Again",
	})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	// The same email in a different role table is fine.
	_, err = svc.Register(context.Background(), &model.RegisterRequest{
		Role:     "doctor",
		Email:    "ada@example.com",
		Password: "hunter2hunter2",
		Name:     "Dr Ada",
	})
	require.NoError(t, err)
}

func TestRegisterDoctorSetsSpecialty(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(repo, &fakeMailer{})
	specialty := int64(7)

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Role:        "doctor",
		Email:       "grace@example.com",
		Password:    "hunter2hunter2",
		Name:        "Grace",
		SpecialtyID: &specialty,
	})
	require.NoError(t, err)
	require.NotNil(t, user.SpecialtyID)
	assert.Equal(t, specialty, *user.SpecialtyID)

	stored, err := repo.FindByEmail(context.Background(), model.RoleDoctor, "grace@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.SpecialtyID)
	assert.Equal(t, specialty, *stored.SpecialtyID)
}

func TestAdminRegisterRequiresAdminRole(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})

	req := &model.RegisterRequest{
		Role: "receptionist", Email: "rex@example.com",
		Password: "hunter2hunter2", Name: "Rex",
	}
	_, err := svc.AdminRegister(context.Background(), &model.Claims{Role: "doctor"}, req)
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	_, err = svc.AdminRegister(context.Background(), &model.Claims{Role: "admin"}, req)
	require.NoError(t, err)
}

func TestResolveRoleScansInPriorityOrder(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	register(t, svc, "doctor", "both@example.com", "hunter2hunter2")
	register(t, svc, "patient", "both@example.com", "hunter2hunter2")
	register(t, svc, "admin", "boss@example.com", "hunter2hunter2")

	role, err := svc.ResolveRole(context.Background(), "both@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, role)

	role, err = svc.ResolveRole(context.Background(), "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	_, err = svc.ResolveRole(context.Background(), "nobody@example.com")
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestResetPasswordPersistsBeforeMailing(t *testing.T) {
	repo := newFakeCredentialRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)
	register(t, svc, "patient", "ada@example.com", "hunter2hunter2")

	err := svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Role: "patient", Email: "ada@example.com",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Len(t, mailer.lastBody, security.TempPasswordLength)

	// The old password no longer works; the mailed one does.
	_, err = svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient", Email: "ada@example.com", Password: "hunter2hunter2",
	})
	require.Error(t, err)
	_, err = svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient", Email: "ada@example.com", Password: mailer.lastBody,
	})
	require.NoError(t, err)
}

func TestResetPasswordReportsMailFailureDistinctly(t *testing.T) {
	repo := newFakeCredentialRepo()
	mailer := &fakeMailer{failSends: true}
	svc := newTestService(repo, mailer)
	register(t, svc, "staff", "sam@example.com", "hunter2hunter2")

	before, err := repo.FindByEmail(context.Background(), model.RoleStaff, "sam@example.com")
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Role: "staff", Email: "sam@example.com",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotificationFailed, appErr.Code)

	// The reset itself still happened.
	after, err := repo.FindByEmail(context.Background(), model.RoleStaff, "sam@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
}

func TestResetPasswordUnknownAccount(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})

	err := svc.ResetPassword(context.Background(), &model.ResetPasswordRequest{
		Role: "patient", Email: "nobody@example.com",
	})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func claimsFor(user *model.UserData) *model.Claims {
	c := &model.Claims{Role: user.Role}
	c.Subject = strconv.FormatInt(user.ID, 10)
	return c
}

func TestChangePasswordRequiresOwnership(t *testing.T) {
	repo := newFakeCredentialRepo()
	svc := newTestService(repo, &fakeMailer{})
	ada := register(t, svc, "patient", "ada@example.com", "hunter2hunter2")
	register(t, svc, "patient", "eve@example.com", "hunter2hunter2")

	before, err := repo.FindByEmail(context.Background(), model.RolePatient, "eve@example.com")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), claimsFor(ada), &model.ChangePasswordRequest{
		Email:           "eve@example.com",
		CurrentPassword: "hunter2hunter2",
		NewPassword:     "newpassword123",
	})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// Nothing was written for the target account.
	after, err := repo.FindByEmail(context.Background(), model.RolePatient, "eve@example.com")
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestChangePasswordVerifiesCurrentPassword(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	ada := register(t, svc, "patient", "ada@example.com", "hunter2hunter2")

	err := svc.ChangePassword(context.Background(), claimsFor(ada), &model.ChangePasswordRequest{
		Email:           "ada@example.com",
		CurrentPassword: "not-my-password",
		NewPassword:     "newpassword123",
	})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInvalidCredentials, appErr.Code)

	err = svc.ChangePassword(context.Background(), claimsFor(ada), &model.ChangePasswordRequest{
		Email:           "ada@example.com",
		CurrentPassword: "hunter2hunter2",
		NewPassword:     "newpassword123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient", Email: "ada@example.com", Password: "newpassword123",
	})
	require.NoError(t, err)
}

func TestAdminChangesAnyPasswordWithoutCurrent(t *testing.T) {
	svc := newTestService(newFakeCredentialRepo(), &fakeMailer{})
	register(t, svc, "patient", "ada@example.com", "hunter2hunter2")
	boss := register(t, svc, "admin", "boss@example.com", "hunter2hunter2")

	// No role in the request: the target is found by table scan.
	err := svc.ChangePassword(context.Background(), claimsFor(boss), &model.ChangePasswordRequest{
		Email:       "ada@example.com",
		NewPassword: "issuedbyadmin1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		LoginType: "patient", Email: "ada@example.com", Password: "issuedbyadmin1",
	})
	require.NoError(t, err)
}
