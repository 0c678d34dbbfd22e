package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

// SessionManager is the part of service.SessionStore the facade drives.
type SessionManager interface {
	Login(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session]
	Register(ctx context.Context, in ports.RegisterInput) service.Result[*domain.Session]
	Logout(ctx context.Context) service.Result[struct{}]
	RefreshIdentity(ctx context.Context) service.Result[*domain.Identity]
}

// Bootstrapper performs the role-based initial load after sign-in.
type Bootstrapper interface {
	Bootstrap(ctx context.Context) service.Result[struct{}]
}

type SessionHandler struct {
	sessions SessionManager
	boot     Bootstrapper
	log      zerolog.Logger
}

func NewSessionHandler(sessions SessionManager, boot Bootstrapper, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, boot: boot, log: log}
}

// sessionView never exposes the bearer token to the shell.
type sessionView struct {
	Identity domain.Identity `json:"identity"`
	Name     string          `json:"name"`
	Profiled bool            `json:"profiled"`
}

func viewOf(id domain.Identity) sessionView {
	return sessionView{Identity: id, Name: id.Name(), Profiled: id.HasEntity()}
}

// Login signs in with email and password.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      ports.LoginInput  true  "Credentials"
// @Success      200   {object}  Response
// @Failure      401   {object}  Response
// @Failure      422   {object}  Response
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req ports.LoginInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	return h.established(c, h.sessions.Login(c.Request().Context(), req))
}

// Register creates an account and signs in with it.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegisterInput  true  "Registration form"
// @Success      201   {object}  Response
// @Failure      422   {object}  Response
// @Router       /session/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req ports.RegisterInput
	if err := bindBody(c, &req); err != nil {
		return err
	}
	r := h.sessions.Register(c.Request().Context(), req)
	if r.Err != nil {
		return r.Err
	}
	h.bootstrap(c.Request().Context())
	return c.JSON(http.StatusCreated, Response{Success: true, Data: viewOf(r.Data.Identity), Notice: r.Notice})
}

func (h *SessionHandler) established(c echo.Context, r service.Result[*domain.Session]) error {
	if r.Err != nil {
		return r.Err
	}
	h.bootstrap(c.Request().Context())
	return c.JSON(http.StatusOK, Response{Success: true, Data: viewOf(r.Data.Identity), Notice: r.Notice})
}

// bootstrap failures are recorded by the store; sign-in still succeeds.
func (h *SessionHandler) bootstrap(ctx context.Context) {
	if h.boot == nil {
		return
	}
	if r := h.boot.Bootstrap(ctx); r.Err != nil {
		h.log.Warn().Err(r.Err).Msg("initial load failed")
	}
}

// Logout ends the session. The local copy is cleared even when the
// backend call fails.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Success      200  {object}  Response
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	return reply(c, http.StatusOK, h.sessions.Logout(c.Request().Context()))
}

// Current returns the signed-in identity.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return replyData(c, viewOf(id))
}

// Refresh reloads the identity from /auth/profile.
//
// @Summary      Refresh identity
// @Tags         session
// @Produce      json
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	r := h.sessions.RefreshIdentity(c.Request().Context())
	if r.Err != nil {
		return r.Err
	}
	return replyData(c, viewOf(*r.Data))
}
