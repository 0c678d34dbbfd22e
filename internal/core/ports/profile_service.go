package ports

import (
	"context"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// ProfileInput carries the restaurant or association form.
type ProfileInput struct {
	Name        string `json:"name"        validate:"required"`
	Address     string `json:"address"     validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required,postalcode"`
	Locality    string `json:"locality"    validate:"required"`
	Region      string `json:"region"      validate:"required"`
	Phone       string `json:"phone"       validate:"required"`
	Email       string `json:"email"       validate:"omitempty,email"`
	Website     string `json:"website"`
	Description string `json:"description"`
	Specialty   string `json:"specialty"`
}

// ProfileResult is returned after a create call.
type ProfileResult struct {
	Profile *domain.Profile
	// AlreadyExisted is true when creation hit an existing profile and the
	// existing record was fetched instead.
	AlreadyExisted bool
}

// ProfileService is the remote restaurant/association API.
type ProfileService interface {
	Create(ctx context.Context, token string, kind domain.ProfileKind, in ProfileInput) (*ProfileResult, error)
	Update(ctx context.Context, token string, kind domain.ProfileKind, id int64, in ProfileInput) (*domain.Profile, error)
	Mine(ctx context.Context, token string, kind domain.ProfileKind) (*domain.Profile, error)
}
