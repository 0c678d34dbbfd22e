package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

func restaurantSession() *domain.Session {
	entity := int64(3)
	return &domain.Session{
		Token:    "secret-token",
		Identity: domain.Identity{ID: 12, FirstName: "Léa", LastName: "Muller", Role: domain.RoleRestaurant, EntityID: &entity},
	}
}

func TestSessionHandler_Login_Success(t *testing.T) {
	boot := &stubBoot{}
	stub := &stubSessions{
		loginFn: func(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session] {
			if in.Email != "lea@example.ch" || in.Password != "pw123456" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return service.Result[*domain.Session]{Success: true, Data: restaurantSession()}
		},
	}
	h := NewSessionHandler(stub, boot, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/session/login", strings.NewReader(`{"email":"lea@example.ch","password":"pw123456"}`))
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret-token") {
		t.Fatalf("token leaked to the shell: %s", rec.Body.String())
	}
	if boot.calls != 1 {
		t.Fatalf("expected one bootstrap, got %d", boot.calls)
	}

	var resp struct {
		Success bool        `json:"success"`
		Data    sessionView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.Data.Name != "Léa Muller" || !resp.Data.Profiled {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSessionHandler_Login_BootstrapFailureStillSignsIn(t *testing.T) {
	boot := &stubBoot{err: errors.New("offline")}
	stub := &stubSessions{
		loginFn: func(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session] {
			return service.Result[*domain.Session]{Success: true, Data: restaurantSession()}
		},
	}
	h := NewSessionHandler(stub, boot, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/session/login", strings.NewReader(`{"email":"a@b.ch","password":"x"}`))
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionHandler_Login_ValidationErrorPropagates(t *testing.T) {
	boot := &stubBoot{}
	stub := &stubSessions{
		loginFn: func(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session] {
			ve := &domain.ValidationError{}
			ve.Add("email", "email must be a valid email")
			return service.Result[*domain.Session]{Err: ve}
		},
	}
	h := NewSessionHandler(stub, boot, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/session/login", strings.NewReader(`{"email":"nope","password":"x"}`))
	err := h.Login(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || !ve.Has("email") {
		t.Fatalf("expected validation error on email, got %v", err)
	}
	if boot.calls != 0 {
		t.Fatalf("bootstrap must not run after a failed login")
	}
}

func TestSessionHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubSessions{
		loginFn: func(ctx context.Context, in ports.LoginInput) service.Result[*domain.Session] {
			t.Fatalf("should not be called")
			return service.Result[*domain.Session]{}
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/session/login", strings.NewReader("{"))
	assertHTTPError(t, h.Login(c), http.StatusBadRequest)
}

func TestSessionHandler_Register_Created(t *testing.T) {
	stub := &stubSessions{
		registerFn: func(ctx context.Context, in ports.RegisterInput) service.Result[*domain.Session] {
			if in.Role != domain.RoleAssociation || in.PasswordConfirmation != "longpassword" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return service.Result[*domain.Session]{
				Success: true,
				Data:    &domain.Session{Token: "t", Identity: domain.Identity{ID: 5, Role: domain.RoleAssociation}},
				Notice:  "signed in, but the session could not be saved on this device",
			}
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	body := `{"last_name":"Favre","first_name":"Jo","email":"jo@asso.ch","password":"longpassword","password_confirmation":"longpassword","role":"association"}`
	c, rec := newContext(http.MethodPost, "/session/register", strings.NewReader(body))
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Notice == "" {
		t.Fatalf("expected persistence notice to reach the shell")
	}
}

func TestSessionHandler_Logout(t *testing.T) {
	called := false
	stub := &stubSessions{
		logoutFn: func(ctx context.Context) service.Result[struct{}] {
			called = true
			return service.Result[struct{}]{Success: true}
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/session/logout", nil)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected logout call and 200, got called=%v code=%d", called, rec.Code)
	}
}

func TestSessionHandler_Current(t *testing.T) {
	h := NewSessionHandler(&stubSessions{}, nil, zerolog.Nop())

	c, _ := newContext(http.MethodGet, "/session", nil)
	assertHTTPError(t, h.Current(c), http.StatusUnauthorized)

	c, rec := newContext(http.MethodGet, "/session", nil)
	c.Set("session", restaurantSession())
	if err := h.Current(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"role":"restaurant"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestSessionHandler_Refresh_Unauthorized(t *testing.T) {
	stub := &stubSessions{
		refreshFn: func(ctx context.Context) service.Result[*domain.Identity] {
			return service.Result[*domain.Identity]{Err: &domain.RequestError{Status: 401, Message: "Unauthenticated."}}
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/session/refresh", nil)
	if err := h.Refresh(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
