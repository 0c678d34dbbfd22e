package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
)

// ReservationAPI implements ports.ReservationService over /reservations.
type ReservationAPI struct {
	c   *Client
	log zerolog.Logger
	now func() time.Time
}

var _ ports.ReservationService = (*ReservationAPI)(nil)

func NewReservationAPI(c *Client, log zerolog.Logger) *ReservationAPI {
	return &ReservationAPI{c: c, log: log, now: time.Now}
}

// ListMine lists the reservations seen by role: those made by the
// association, or those received on the restaurant's listings.
func (a *ReservationAPI) ListMine(ctx context.Context, token string, role domain.Role, f ports.ReservationFilter) ([]domain.Reservation, error) {
	path := "/reservations/restaurant"
	if role == domain.RoleAssociation {
		path = "/reservations/association"
	}
	q := url.Values{}
	if f.Status != "" {
		q.Set("statut", string(f.Status))
	}
	q.Set("timestamp", strconv.FormatInt(a.now().UnixMilli(), 10))

	raw, err := a.c.Request(ctx, http.MethodGet, path, q, nil, token)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	items, err := DecodeList[reservationWire](raw, a.log)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	out := make([]domain.Reservation, 0, len(items))
	for _, w := range items {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (a *ReservationAPI) Create(ctx context.Context, token string, in ports.ReservationInput) (*domain.Reservation, error) {
	body := reservationWrite{
		ListingID: in.ListingID,
		CollectAt: wireTime(in.CollectAt),
		Comment:   in.Comment,
	}
	raw, err := a.c.Request(ctx, http.MethodPost, "/reservations", nil, body, token)
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", renameFields(err, reservationFieldNames))
	}
	return decodeReservation(raw)
}

// SetStatus moves reservation id to status. Callers check the transition first.
func (a *ReservationAPI) SetStatus(ctx context.Context, token string, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	path := "/reservations/" + strconv.FormatInt(id, 10) + "/status"
	raw, err := a.c.Request(ctx, http.MethodPut, path, nil, statusWrite{Status: string(status)}, token)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("set reservation %d status: %w", id, err)
	}
	return decodeReservation(raw)
}

func decodeReservation(raw []byte) (*domain.Reservation, error) {
	w, err := DecodeRecord[reservationWire](raw, "reservation")
	if err != nil {
		return nil, err
	}
	if w == nil || w.ID == 0 {
		return nil, nil
	}
	r := w.toDomain()
	return &r, nil
}
