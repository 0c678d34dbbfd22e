package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/ports"
)

// AuthAPI implements ports.AuthService over /auth/*.
type AuthAPI struct {
	c   *Client
	log zerolog.Logger
}

var _ ports.AuthService = (*AuthAPI)(nil)

func NewAuthAPI(c *Client, log zerolog.Logger) *AuthAPI {
	return &AuthAPI{c: c, log: log}
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := a.c.Request(ctx, http.MethodPost, "/auth/login", nil, body, "")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return decodeSession(raw)
}

// Register creates the account and signs it in. The backend answers with
// the same {token, utilisateur} body as login.
func (a *AuthAPI) Register(ctx context.Context, in ports.RegisterInput) (*domain.Session, error) {
	body := registerWire{
		LastName:             in.LastName,
		FirstName:            in.FirstName,
		Email:                in.Email,
		Password:             in.Password,
		PasswordConfirmation: in.PasswordConfirmation,
		Type:                 string(in.Role),
		Phone:                in.Phone,
	}
	raw, err := a.c.Request(ctx, http.MethodPost, "/auth/register", nil, body, "")
	if err != nil {
		return nil, fmt.Errorf("register: %w", renameFields(err, registerFieldNames))
	}
	return decodeSession(raw)
}

func (a *AuthAPI) Logout(ctx context.Context, token string) error {
	if _, err := a.c.Request(ctx, http.MethodPost, "/auth/logout", nil, nil, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Profile fetches the identity behind token.
func (a *AuthAPI) Profile(ctx context.Context, token string) (*domain.Identity, error) {
	raw, err := a.c.Request(ctx, http.MethodGet, "/auth/profile", nil, nil, token)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	u, err := DecodeRecord[userWire](raw, "utilisateur", "user")
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if u == nil || u.ID == 0 {
		return nil, &domain.TransportError{Err: errors.New("profile: response has no user")}
	}
	id := u.toDomain()
	return &id, nil
}

func decodeSession(raw json.RawMessage) (*domain.Session, error) {
	resp, err := DecodeRecord[authResponse](raw)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.user() == nil {
		return nil, &domain.TransportError{Err: errors.New("auth response has no user")}
	}
	s, err := domain.NewSession(resp.Token, resp.user().toDomain())
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}
	return s, nil
}
