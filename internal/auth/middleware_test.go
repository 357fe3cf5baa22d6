package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
)

func sessionForRequest(t *testing.T) (*shared.Session, *http.Request) {
	t.Helper()
	mr := miniredis.RunT(t)
	manager := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetToken("jwt-abc")
	sess.SetUserJSON(`{"_id":"u1","role":"User"}`)

	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	return sess, req
}

func TestHandleUpstreamAuthFailureTearsDownIdentity(t *testing.T) {
	sess, req := sessionForRequest(t)
	rec := httptest.NewRecorder()

	err := fmt.Errorf("load components: %w", upstream.ErrUnauthorized)
	if !auth.HandleUpstreamAuthFailure(rec, req, err) {
		t.Fatal("expected the 401 to be handled")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q, want /login", loc)
	}
	if sess.Token() != "" || sess.UserJSON() != "" {
		t.Fatal("identity should be cleared after a 401")
	}
	flash := sess.PopFlash()
	if flash == nil || flash.Kind != "error" {
		t.Fatalf("expected an expiry flash, got %+v", flash)
	}
}

func TestHandleUpstreamAuthFailureIgnoresOtherErrors(t *testing.T) {
	sess, req := sessionForRequest(t)
	rec := httptest.NewRecorder()

	if auth.HandleUpstreamAuthFailure(rec, req, errors.New("backend offline")) {
		t.Fatal("non-401 errors must not be handled")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("response should be untouched, got status %d", rec.Code)
	}
	if sess.Token() != "jwt-abc" {
		t.Fatal("token must survive non-401 failures")
	}
}

func TestRequireUserExpiresOnRevalidation401(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not authorized"}`))
	}))
	t.Cleanup(backend.Close)

	sess, req := sessionForRequest(t)
	sess.SetUserJSON("")

	mw := auth.Middleware{Service: auth.NewService(upstream.NewClient(backend.URL))}
	rec := httptest.NewRecorder()
	mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q, want /login", loc)
	}
	if sess.Token() != "" {
		t.Fatal("token should be cleared when revalidation returns 401")
	}
}
