package ports

import (
	"context"
	"time"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// ListingInput carries the listing form. RestaurantID is filled from the
// session, not from user input.
type ListingInput struct {
	Title         string               `json:"title"          validate:"required"`
	Description   string               `json:"description"    validate:"required"`
	Quantity      float64              `json:"quantity"       validate:"gt=0"`
	Unit          string               `json:"unit"           validate:"required"`
	AvailableFrom time.Time            `json:"available_from" validate:"required"`
	ExpiresAt     time.Time            `json:"expires_at"     validate:"required,gtfield=AvailableFrom"`
	Allergens     string               `json:"allergens"`
	Urgent        bool                 `json:"urgent"`
	Temperature   domain.Temperature   `json:"temperature"    validate:"omitempty,oneof=refrigere ambiant congele"`
	Status        domain.ListingStatus `json:"status"         validate:"omitempty,oneof=disponible reserve distribue expire annule"`
	RestaurantID  int64                `json:"-"`
}

// ListingFilter narrows the restaurant's own listings.
type ListingFilter struct {
	Status domain.ListingStatus `query:"status"`
}

// SearchParams narrows the association-side search.
type SearchParams struct {
	Query       string             `query:"q"`
	Locality    string             `query:"locality"`
	Region      string             `query:"region"`
	Temperature domain.Temperature `query:"temperature"`
	UrgentOnly  bool               `query:"urgent"`
}

// ListingService is the remote listing API.
type ListingService interface {
	ListAvailable(ctx context.Context, token string) ([]domain.Listing, error)
	ListMine(ctx context.Context, token string, f ListingFilter) ([]domain.Listing, error)
	Get(ctx context.Context, token string, id int64) (*domain.Listing, error)
	Create(ctx context.Context, token string, in ListingInput) (*domain.Listing, error)
	Update(ctx context.Context, token string, id int64, in ListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, token string, id int64) error
	Search(ctx context.Context, token string, p SearchParams) ([]domain.Listing, error)
}
