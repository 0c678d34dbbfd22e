package ports

import (
	"context"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// LoginInput carries the login form.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	LastName             string      `json:"last_name"             validate:"required"`
	FirstName            string      `json:"first_name"            validate:"required"`
	Email                string      `json:"email"                 validate:"required,email"`
	Password             string      `json:"password"              validate:"required,min=8"`
	PasswordConfirmation string      `json:"password_confirmation" validate:"eqfield=Password"`
	Role                 domain.Role `json:"role"                  validate:"required,oneof=restaurant association"`
	Phone                string      `json:"phone,omitempty"`
}

// AuthService is the remote authentication API.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*domain.Identity, error)
}
