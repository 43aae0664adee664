package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthReportsChecks(t *testing.T) {
	s := NewServer(0, "v1.2.3")
	s.RegisterCheck("liquidity", func(context.Context) (bool, string) {
		return true, ""
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "ok" || status.Version != "v1.2.3" {
		t.Errorf("status = %+v", status)
	}
	if !status.Checks["liquidity"].Healthy {
		t.Error("liquidity check should be healthy")
	}
}

func TestHealthDegradedOnFailingCheck(t *testing.T) {
	s := NewServer(0, "test")
	s.RegisterCheck("liquidity", func(context.Context) (bool, string) {
		return false, "no snapshots yet"
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if got := status.Checks["liquidity"].Message; got != "no snapshots yet" {
		t.Errorf("message = %q", got)
	}
}

func TestReadyAndLive(t *testing.T) {
	s := NewServer(0, "test")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("ready: code %d body %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "alive" {
		t.Errorf("live: code %d body %q", rec.Code, rec.Body.String())
	}
}
