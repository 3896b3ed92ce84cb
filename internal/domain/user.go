package domain

import (
	"time"

	"github.com/trailbook-app/trailbook/internal/validation"
)

// Role determines what a user may do. Guides appear on tours, lead
// guides manage tour content, admins manage everything.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// User is an account. Credential fields carry `json:"-"` so they can
// never leak through a response, regardless of which handler
// serializes the struct.
type User struct {
	ID                   int64      `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	Email                string     `db:"email" json:"email"`
	Photo                string     `db:"photo" json:"photo"`
	Role                 Role       `db:"role" json:"role"`
	PasswordHash         string     `db:"password_hash" json:"-"`
	PasswordChangedAt    *time.Time `db:"password_changed_at" json:"-"`
	PasswordResetToken   *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" json:"-"`
	Active               bool       `db:"active" json:"-"`
	Version              int        `db:"version" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user's role is one of the given set.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// PasswordChangedAfter reports whether the password was changed after
// the given instant. Timestamps are compared at second precision since
// token issued-at claims carry no sub-second part.
func (u *User) PasswordChangedAfter(t time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(t.Truncate(time.Second))
}

type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *SignupRequest) Validate() error { return validation.Struct(r) }

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error { return validation.Struct(r) }

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error { return validation.Struct(r) }

// ResetPasswordRequest carries the new password; the reset token
// itself arrives as a path parameter.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *ResetPasswordRequest) Validate() error { return validation.Struct(r) }

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"password_current" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (r *UpdatePasswordRequest) Validate() error { return validation.Struct(r) }

// UpdateMeRequest is the self-service profile update. It has no role
// or password fields on purpose; the service additionally ignores any
// unknown keys the client sends.
type UpdateMeRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Photo *string `json:"photo" validate:"omitempty,max=255"`
}

func (r *UpdateMeRequest) Validate() error { return validation.Struct(r) }

// CreateUserRequest exists only so the users collection fits the
// generic resource endpoints. Creating users goes through signup, and
// the service rejects this path unconditionally.
type CreateUserRequest struct{}

func (r *CreateUserRequest) Validate() error { return nil }

// UpdateUserRequest is the admin-only user update, which may also
// change role and active status. Passwords are never updated through
// this path.
type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=100"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Photo  *string `json:"photo" validate:"omitempty,max=255"`
	Role   *Role   `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	Active *bool   `json:"active"`
}

func (r *UpdateUserRequest) Validate() error { return validation.Struct(r) }
