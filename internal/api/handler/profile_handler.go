package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

type ProfileStore interface {
	Fetch(ctx context.Context) service.Result[*domain.Profile]
	Save(ctx context.Context, in ports.ProfileInput) service.Result[*domain.Profile]
}

// ProfileHandler serves the restaurant or association profile of the
// signed-in user. The kind follows the session role.
type ProfileHandler struct {
	profiles ProfileStore
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get loads the profile. Data is null with a notice when none exists yet.
//
// @Summary      Current profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  Response
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	return reply(c, http.StatusOK, h.profiles.Fetch(c.Request().Context()))
}

// Save creates the profile on first use and updates it afterwards.
//
// @Summary      Save profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      ports.ProfileInput  true  "Profile form"
// @Success      200   {object}  Response
// @Failure      422   {object}  Response
// @Router       /profile [put]
func (h *ProfileHandler) Save(c echo.Context) error {
	var req ports.ProfileInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	return reply(c, http.StatusOK, h.profiles.Save(c.Request().Context(), req))
}
