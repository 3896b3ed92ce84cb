package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/trailbook-app/trailbook/internal/auth"
	"github.com/trailbook-app/trailbook/internal/domain"
	"github.com/trailbook-app/trailbook/internal/errs"
	"github.com/trailbook-app/trailbook/internal/lib/job"
	"github.com/trailbook-app/trailbook/internal/lib/utils"
	"github.com/trailbook-app/trailbook/internal/repository"
	"github.com/trailbook-app/trailbook/internal/server"
	"github.com/trailbook-app/trailbook/internal/sqlerr"
)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = 10 * time.Minute

// AuthService implements signup, login and the password lifecycle.
type AuthService struct {
	server *server.Server
	users  *repository.UsersRepository
	issuer *auth.TokenIssuer
}

func NewAuthService(s *server.Server, users *repository.UsersRepository, issuer *auth.TokenIssuer) *AuthService {
	return &AuthService{
		server: s,
		users:  users,
		issuer: issuer,
	}
}

// TokenTTL reports the issued tokens' lifetime, used by the handler to
// set the auth cookie expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.issuer.TTL()
}

// Signup registers a new account and logs it in. A duplicate email
// surfaces as a conflict through the database error mapper. The
// welcome email is queued, never sent inline.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, string, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.Create(ctx, req.Name, req.Email, hash)
	if err != nil {
		return nil, "", sqlerr.HandleError(err)
	}

	token, err := s.issuer.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.enqueueWelcomeEmail(user)

	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password produce the same response so the endpoint cannot be
// used to probe which addresses are registered.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", errs.NewUnauthorizedError("Incorrect email or password", nil)
		}
		return nil, "", sqlerr.HandleError(err)
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, "", errs.NewUnauthorizedError("Incorrect email or password", nil)
	}

	token, err := s.issuer.Sign(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ForgotPassword stores a hashed single-use reset token and emails the
// plain token to the account. If the email cannot even be queued, the
// token is discarded so a dead token does not block a retry.
func (s *AuthService) ForgotPassword(ctx context.Context, req *domain.ForgotPasswordRequest) error {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.NewNotFoundError("There is no user with that email address.")
		}
		return sqlerr.HandleError(err)
	}

	plain, hashed, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, user.ID, hashed, time.Now().Add(resetTokenTTL)); err != nil {
		return sqlerr.HandleError(err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/reset-password/%s", s.server.Config.Integration.AppBaseURL, plain)
	validMinutes := int(resetTokenTTL / time.Minute)

	task, err := job.NewPasswordResetEmailTask(user.Email, utils.FirstName(user.Name), resetURL, validMinutes)
	if err == nil {
		_, err = s.server.Job.Client.Enqueue(task)
	}
	if err != nil {
		s.server.Logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to enqueue password reset email")
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.server.Logger.Error().Err(clearErr).Int64("user_id", user.ID).Msg("failed to clear reset token")
		}
		return errs.NewInternalServerError().WithMessage("There was an error sending the email. Try again later!")
	}

	return nil
}

// ResetPassword consumes a reset token and sets the new password. The
// password change stamps password_changed_at, so every token issued
// before this moment stops working. A fresh token is returned.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken string, req *domain.ResetPasswordRequest) (*domain.User, string, error) {
	user, err := s.users.GetByResetToken(ctx, auth.HashResetToken(plainToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", errs.NewBadRequestError("Token is invalid or has expired", nil, nil)
		}
		return nil, "", sqlerr.HandleError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	updated, err := s.users.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return nil, "", sqlerr.HandleError(err)
	}

	token, err := s.issuer.Sign(updated.ID)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

// UpdatePassword changes the password of a logged-in user after
// re-checking the current one, and returns a fresh token since the
// old one just went stale.
func (s *AuthService) UpdatePassword(ctx context.Context, user *domain.User, req *domain.UpdatePasswordRequest) (*domain.User, string, error) {
	if !auth.CheckPassword(req.PasswordCurrent, user.PasswordHash) {
		return nil, "", errs.NewUnauthorizedError("Your current password is wrong.", nil)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	updated, err := s.users.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return nil, "", sqlerr.HandleError(err)
	}

	token, err := s.issuer.Sign(updated.ID)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

func (s *AuthService) enqueueWelcomeEmail(user *domain.User) {
	task, err := job.NewWelcomeEmailTask(user.Email, utils.FirstName(user.Name))
	if err == nil {
		_, err = s.server.Job.Client.Enqueue(task)
	}
	if err != nil {
		// Signup must not fail because the mail queue hiccuped.
		s.server.Logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to enqueue welcome email")
	}
}
