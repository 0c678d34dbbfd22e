package ports

import (
	"context"
	"time"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

// ReservationInput carries the reservation form.
type ReservationInput struct {
	ListingID int64     `json:"listing_id" validate:"required,gt=0"`
	CollectAt time.Time `json:"collect_at" validate:"required"`
	Comment   string    `json:"comment"    validate:"max=500"`
}

// ReservationFilter narrows a reservation list.
type ReservationFilter struct {
	Status domain.ReservationStatus `query:"status"`
}

// ReservationService is the remote reservation API.
type ReservationService interface {
	ListMine(ctx context.Context, token string, role domain.Role, f ReservationFilter) ([]domain.Reservation, error)
	Create(ctx context.Context, token string, in ReservationInput) (*domain.Reservation, error)
	SetStatus(ctx context.Context, token string, id int64, status domain.ReservationStatus) (*domain.Reservation, error)
}
