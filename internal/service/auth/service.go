package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/careflow/clinic-api/internal/email"
	"github.com/careflow/clinic-api/internal/model"
	"github.com/careflow/clinic-api/internal/repository"
	pkgauth "github.com/careflow/clinic-api/pkg/auth"
	apperrors "github.com/careflow/clinic-api/pkg/errors"
	"github.com/careflow/clinic-api/pkg/logger"
	"github.com/careflow/clinic-api/pkg/security"
)

// Service authenticates against the per-role credential tables and manages
// the password lifecycle.
type Service interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.UserData, error)
	AdminRegister(ctx context.Context, claims *model.Claims, req *model.RegisterRequest) (*model.UserData, error)
	ResolveRole(ctx context.Context, emailAddr string) (model.Role, error)
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, claims *model.Claims, req *model.ChangePasswordRequest) error
}

type service struct {
	creds  repository.CredentialRepository
	tokens pkgauth.TokenService
	hasher security.PasswordHasher
	mailer email.Service
	logger *logger.Logger
}

func NewService(
	creds repository.CredentialRepository,
	tokens pkgauth.TokenService,
	hasher security.PasswordHasher,
	mailer email.Service,
	logger *logger.Logger,
) Service {
	return &service{
		creds:  creds,
		tokens: tokens,
		hasher: hasher,
		mailer: mailer,
		logger: logger,
	}
}

// resolve looks up the credential for (role, email). A missing row is not an
// error here; it comes back as a nil credential so Login can collapse it with
// a bad password into one indistinguishable failure.
func (s *service) resolve(ctx context.Context, role model.Role, emailAddr string) (*model.Credential, error) {
	cred, err := s.creds.FindByEmail(ctx, role, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage(err)
	}
	return cred, nil
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	role, err := model.ParseRole(req.LoginType)
	if err != nil {
		return nil, err
	}

	cred, err := s.resolve(ctx, role, req.Email)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apperrors.InvalidCredentials()
	}

	if err := s.hasher.Compare(cred.PasswordHash, req.Password); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	token, _, err := s.tokens.Generate(cred, role)
	if err != nil {
		s.logger.Error(err, "failed to issue token", "role", role.String())
		return nil, apperrors.Storage(err)
	}

	return &model.Session{
		Token: model.TokenData{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(s.tokens.Expiry().Seconds()),
		},
		User: model.UserData{
			ID:          cred.ID,
			Name:        cred.Name,
			Role:        role.String(),
			SpecialtyID: cred.SpecialtyID,
		},
	}, nil
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserData, error) {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("could not process password", err)
	}

	cred := &model.Credential{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
	}
	if err := s.creds.Insert(ctx, role, cred); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Storage(err)
	}

	// The insert covers the shared columns only; the doctor table's specialty
	// reference is set in a follow-up statement.
	if role == model.RoleDoctor && req.SpecialtyID != nil {
		if err := s.creds.UpdateDoctorSpecialty(ctx, req.Email, *req.SpecialtyID); err != nil {
			s.logger.Error(err, "failed to set doctor specialty", "doctor_id", cred.ID)
			return nil, apperrors.Storage(err)
		}
		cred.SpecialtyID = req.SpecialtyID
	}

	return &model.UserData{
		ID:          cred.ID,
		Name:        cred.Name,
		Role:        role.String(),
		SpecialtyID: cred.SpecialtyID,
	}, nil
}

func (s *service) AdminRegister(ctx context.Context, claims *model.Claims, req *model.RegisterRequest) (*model.UserData, error) {
	if claims == nil || claims.Role != model.RoleAdmin.String() {
		return nil, apperrors.Forbidden("only admins may register staff accounts")
	}
	return s.Register(ctx, req)
}

// ResolveRole scans the role tables in fixed priority order and reports the
// first one holding the email.
func (s *service) ResolveRole(ctx context.Context, emailAddr string) (model.Role, error) {
	for _, role := range model.RoleScanOrder {
		exists, err := s.creds.EmailExists(ctx, role, emailAddr)
		if err != nil {
			return "", apperrors.Storage(err)
		}
		if exists {
			return role, nil
		}
	}
	return "", apperrors.NotFound("account")
}

// ResetPassword overwrites the stored hash with a fresh temporary password
// and mails it out. The new password is already persisted by the time the
// mail is attempted, so a send failure is reported as its own outcome rather
// than rolled back.
func (s *service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return err
	}

	exists, err := s.creds.EmailExists(ctx, role, req.Email)
	if err != nil {
		return apperrors.Storage(err)
	}
	if !exists {
		return apperrors.NotFound("account")
	}

	tempPassword, err := security.GenerateTempPassword()
	if err != nil {
		return apperrors.Storage(err)
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return apperrors.Storage(err)
	}

	if err := s.creds.UpdatePassword(ctx, role, req.Email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("account")
		}
		return apperrors.Storage(err)
	}

	if err := s.mailer.SendTemporaryPassword(ctx, req.Email, tempPassword); err != nil {
		s.logger.Error(err, "temporary password email failed", "role", role.String())
		return apperrors.NotificationFailed(
			"password was reset but the notification email could not be sent", err)
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, claims *model.Claims, req *model.ChangePasswordRequest) error {
	if claims == nil {
		return apperrors.Forbidden("missing session")
	}
	callerRole, err := model.ParseRole(claims.Role)
	if err != nil {
		return err
	}

	targetRole := callerRole
	if callerRole == model.RoleAdmin {
		// Admins may rotate anyone's password without knowing the current
		// one. The target role comes from the request, or a table scan when
		// the caller leaves it out.
		if req.Role != "" {
			if targetRole, err = model.ParseRole(req.Role); err != nil {
				return err
			}
		} else if targetRole, err = s.ResolveRole(ctx, req.Email); err != nil {
			return err
		}
	} else {
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return apperrors.Forbidden("invalid session subject")
		}
		self, err := s.creds.FindByID(ctx, callerRole, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("account")
			}
			return apperrors.Storage(err)
		}
		if self.Email != req.Email {
			return apperrors.Forbidden("you may only change your own password")
		}
		if err := s.hasher.Compare(self.PasswordHash, req.CurrentPassword); err != nil {
			return apperrors.InvalidCurrentPassword()
		}
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Storage(err)
	}
	if err := s.creds.UpdatePassword(ctx, targetRole, req.Email, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("account")
		}
		return apperrors.Storage(err)
	}
	return nil
}
