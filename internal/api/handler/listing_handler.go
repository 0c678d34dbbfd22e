package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

// ListingStore is the listing side of service.DataStore.
type ListingStore interface {
	FetchAllListings(ctx context.Context) service.Result[[]domain.Listing]
	AvailableListings() []domain.Listing
	FetchMyListings(ctx context.Context, f ports.ListingFilter) service.Result[[]domain.Listing]
	SearchListings(ctx context.Context, p ports.SearchParams) service.Result[[]domain.Listing]
	GetListing(ctx context.Context, id int64) service.Result[*domain.Listing]
	ListingActions(ctx context.Context, id int64) service.Result[domain.ListingActions]
	CreateListing(ctx context.Context, in ports.ListingInput) service.Result[*domain.Listing]
	UpdateListing(ctx context.Context, id int64, in ports.ListingInput) service.Result[*domain.Listing]
	DeleteListing(ctx context.Context, id int64) service.Result[struct{}]
}

type ListingHandler struct {
	store ListingStore
}

func NewListingHandler(store ListingStore) *ListingHandler {
	return &ListingHandler{store: store}
}

// List refreshes and returns every available listing.
//
// @Summary      Available listings
// @Tags         listings
// @Produce      json
// @Success      200  {object}  Response
// @Router       /listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	return reply(c, http.StatusOK, h.store.FetchAllListings(c.Request().Context()))
}

// AvailableNow filters the cached listings without a network call.
//
// @Summary      Listings still collectable
// @Tags         listings
// @Produce      json
// @Success      200  {object}  Response
// @Router       /listings/available [get]
func (h *ListingHandler) AvailableNow(c echo.Context) error {
	return replyData(c, h.store.AvailableListings())
}

// Mine returns the restaurant's own listings, optionally by status.
//
// @Summary      My listings
// @Tags         listings
// @Produce      json
// @Param        status  query     string  false  "Listing status"
// @Success      200     {object}  Response
// @Router       /listings/mine [get]
func (h *ListingHandler) Mine(c echo.Context) error {
	var f ports.ListingFilter
	if err := bindQuery(c, &f); err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.FetchMyListings(c.Request().Context(), f))
}

// Search runs a free-text search. Results are not cached.
//
// @Summary      Search listings
// @Tags         listings
// @Produce      json
// @Param        q            query     string  false  "Free text"
// @Param        locality     query     string  false  "Locality"
// @Param        region       query     string  false  "Region (canton)"
// @Param        temperature  query     string  false  "refrigere, ambiant or congele"
// @Param        urgent       query     bool    false  "Urgent only"
// @Success      200          {object}  Response
// @Router       /listings/search [get]
func (h *ListingHandler) Search(c echo.Context) error {
	var p ports.SearchParams
	if err := bindQuery(c, &p); err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.SearchListings(c.Request().Context(), p))
}

// Get fetches one listing.
//
// @Summary      Get listing
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing id"
// @Success      200  {object}  Response
// @Failure      404  {object}  Response
// @Router       /listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.GetListing(c.Request().Context(), id))
}

// Actions reports whether the listing may still be edited or deleted.
//
// @Summary      Listing actions
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing id"
// @Success      200  {object}  Response
// @Router       /listings/{id}/actions [get]
func (h *ListingHandler) Actions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.ListingActions(c.Request().Context(), id))
}

// Create publishes a listing for the signed-in restaurant.
//
// @Summary      Create listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        body  body      ports.ListingInput  true  "Listing form"
// @Success      201   {object}  Response
// @Failure      403   {object}  Response
// @Failure      422   {object}  Response
// @Router       /listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	var req ports.ListingInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	return reply(c, http.StatusCreated, h.store.CreateListing(c.Request().Context(), req))
}

// Update edits a listing that is still available.
//
// @Summary      Update listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Listing id"
// @Param        body  body      ports.ListingInput  true  "Listing form"
// @Success      200   {object}  Response
// @Failure      409   {object}  Response
// @Router       /listings/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ports.ListingInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.UpdateListing(c.Request().Context(), id, req))
}

// Delete removes a listing that is still available.
//
// @Summary      Delete listing
// @Tags         listings
// @Produce      json
// @Param        id   path      int  true  "Listing id"
// @Success      200  {object}  Response
// @Failure      409  {object}  Response
// @Router       /listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.store.DeleteListing(c.Request().Context(), id))
}
