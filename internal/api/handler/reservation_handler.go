package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

// ReservationStore is the reservation side of service.DataStore.
type ReservationStore interface {
	FetchReservations(ctx context.Context, f ports.ReservationFilter) service.Result[[]domain.Reservation]
	CreateReservation(ctx context.Context, in ports.ReservationInput) service.Result[*domain.Reservation]
	ReservationActions(ctx context.Context, id int64) service.Result[[]domain.ReservationAction]
	TransitionReservation(ctx context.Context, id int64, action domain.ReservationAction) service.Result[*domain.Reservation]
}

type ReservationHandler struct {
	store ReservationStore
}

func NewReservationHandler(store ReservationStore) *ReservationHandler {
	return &ReservationHandler{store: store}
}

type transitionRequest struct {
	Action domain.ReservationAction `json:"action"`
}

// List returns the reservations received (restaurant) or made (association).
//
// @Summary      Reservations
// @Tags         reservations
// @Produce      json
// @Param        status  query     string  false  "Reservation status"
// @Success      200     {object}  Response
// @Router       /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	var f ports.ReservationFilter
	if err := bindQuery(c, &f); err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.FetchReservations(c.Request().Context(), f))
}

// Create books a listing for the signed-in association.
//
// @Summary      Reserve a listing
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        body  body      ports.ReservationInput  true  "Reservation form"
// @Success      201   {object}  Response
// @Failure      422   {object}  Response
// @Router       /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req ports.ReservationInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	return reply(c, http.StatusCreated, h.store.CreateReservation(c.Request().Context(), req))
}

// Actions lists the transitions the current role may request.
//
// @Summary      Reservation actions
// @Tags         reservations
// @Produce      json
// @Param        id   path      int  true  "Reservation id"
// @Success      200  {object}  Response
// @Router       /reservations/{id}/actions [get]
func (h *ReservationHandler) Actions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.ReservationActions(c.Request().Context(), id))
}

// Transition applies accept, refuse, complete or cancel. A transition the
// current status does not allow answers 409 with a notice.
//
// @Summary      Change reservation status
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Reservation id"
// @Param        body  body      transitionRequest  true  "Action"
// @Success      200   {object}  Response
// @Failure      409   {object}  Response
// @Router       /reservations/{id}/transitions [post]
func (h *ReservationHandler) Transition(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if !req.Action.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}
	return reply(c, http.StatusOK, h.store.TransitionReservation(c.Request().Context(), id, req.Action))
}
