package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", nil)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	up := pingFunc(func(ctx context.Context) error { return nil })
	down := pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name string
		deps map[string]Pinger
		code int
	}{
		{"all up", map[string]Pinger{"session_store": up, "backend": up}, http.StatusOK},
		{"backend down", map[string]Pinger{"session_store": up, "backend": down}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/health/ready", nil)
			if err := NewReadinessHandler(tt.deps).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(resp.Dependencies) != len(tt.deps) {
				t.Fatalf("expected %d dependencies, got %+v", len(tt.deps), resp.Dependencies)
			}
		})
	}
}
