package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", zerolog.Nop(), WithHTTPClient(srv.Client()))
}

func TestClient_SetsHeadersAndBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/invendus/my" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer T" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		if got := r.Header.Get("Cache-Control"); got != "no-cache, no-store, must-revalidate" {
			t.Fatalf("unexpected Cache-Control %q", got)
		}
		if r.Header.Get("Pragma") != "no-cache" || r.Header.Get("Expires") != "0" {
			t.Fatalf("cache headers missing")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Fatalf("accept header missing")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatalf("request id missing")
		}
		w.Write([]byte(`[]`))
	})

	raw, err := c.Request(context.Background(), http.MethodGet, "/invendus/my", nil, nil, "T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("unexpected body %s", raw)
	}
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Fatalf("authorization header must be absent")
		}
		w.Write([]byte(`{}`))
	})
	if _, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_BodyOnlyForWriteMethods(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		switch r.Method {
		case http.MethodGet:
			if len(b) != 0 {
				t.Fatalf("GET must not carry a body, got %s", b)
			}
		case http.MethodPost:
			if !strings.Contains(string(b), `"a":1`) {
				t.Fatalf("POST body missing: %s", b)
			}
		}
		w.Write([]byte(`{}`))
	})
	body := map[string]int{"a": 1}
	if _, err := c.Request(context.Background(), http.MethodGet, "/x", nil, body, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Request(context.Background(), http.MethodPost, "/x", nil, body, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_ValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"The given data was invalid.","errors":{"email":["taken","bad"],"titre":"required"}}`))
	})

	_, err := c.Request(context.Background(), http.MethodPost, "/auth/register", nil, map[string]string{}, "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T %v", err, err)
	}
	if len(ve.Fields["email"]) != 2 || ve.Fields["titre"][0] != "required" {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
	if ve.Message != "The given data was invalid." {
		t.Fatalf("unexpected message %q", ve.Message)
	}
}

func TestClient_RequestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Vous avez déjà un restaurant"}`, "Vous avez déjà un restaurant"},
		{"error field", http.StatusForbidden, `{"error":"forbidden"}`, "forbidden"},
		{"fallback", http.StatusInternalServerError, `{"foo":1}`, genericErrorMessage},
		{"empty body", http.StatusNotFound, ``, genericErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			})
			_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil, "")
			var re *domain.RequestError
			if !errors.As(err, &re) {
				t.Fatalf("expected RequestError, got %T %v", err, err)
			}
			if re.Status != tt.code || re.Message != tt.want {
				t.Fatalf("got %d %q", re.Status, re.Message)
			}
		})
	}
}

func TestClient_UnauthorizedMatchesSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthenticated."}`))
	})
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil, "T")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_NonJSONIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>Bad Gateway</html>`))
	})
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil, "")
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
}

func TestClient_EmptySuccessIsNull(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	raw, err := c.Request(context.Background(), http.MethodDelete, "/invendus/1", nil, nil, "T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != "null" {
		t.Fatalf("expected null, got %s", raw)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, zerolog.Nop())
	_, err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil, "")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
}
