package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ebph-project/ebphd/internal/eventbus"
	"github.com/ebph-project/ebphd/internal/health"
	"github.com/ebph-project/ebphd/internal/persist"
	"github.com/ebph-project/ebphd/internal/registry"
	"github.com/ebph-project/ebphd/internal/settings"
)

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	store, err := persist.Open(t.TempDir(), 64, 9)
	if err != nil {
		t.Fatalf("persist.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bus := eventbus.New(8)
	reg := registry.New(bus, 64, 9, 128)
	stg := settings.NewStore(settings.Default())
	checker := health.NewChecker(store, bus)

	return NewServer(reg, store, stg, bus, checker), reg
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleProfileListAndForget(t *testing.T) {
	s, reg := newTestServer(t)
	p := reg.GetOrCreate(0xabc, "/bin/true")
	_ = p

	req := httptest.NewRequest(http.MethodGet, "/profiles/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	delReq := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/profiles/%016x", uint64(0xabc)), nil)
	delRec := httptest.NewRecorder()
	s.Handler().ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusOK {
		t.Fatalf("forget status = %d, want 200, body=%s", delRec.Code, delRec.Body.String())
	}

	if _, ok := reg.Lookup(0xabc); ok {
		t.Fatalf("profile still present in registry after forget")
	}
}

func TestHandleProfileNormalizeNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/profiles/deadbeef/normalize", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleProfileNormalize(t *testing.T) {
	s, reg := newTestServer(t)
	reg.GetOrCreate(1, "/bin/a")

	req := httptest.NewRequest(http.MethodPost, "/profiles/0000000000000001/normalize", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	p, _ := reg.Lookup(1)
	p.Lock()
	defer p.Unlock()
	if p.Status.String() != "FROZEN" {
		t.Fatalf("profile status = %s, want FROZEN", p.Status.String())
	}
}

func TestHandleSettingsSet(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPut, "/settings/ENFORCING/1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSettingsSetUnknownTunable(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPut, "/settings/NOT_A_TUNABLE/1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleTasks(t *testing.T) {
	s, reg := newTestServer(t)
	reg.TaskFor(1, 1, 5)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
