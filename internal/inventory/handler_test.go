package inventory_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/lims-dash/lims-dash/internal/inventory"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
	"github.com/lims-dash/lims-dash/internal/view"
	_ "github.com/lims-dash/lims-dash/testing"
)

// newInventoryRouter mounts the handler behind a middleware that loads a
// session the way the real router does.
func newInventoryRouter(t *testing.T, api *upstream.Client) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := inventory.NewHandler(logger, inventory.NewService(api), templates, csrfManager, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(context.Background(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			sess.SetToken("test-token")
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/inventory", handler.MountRoutes)
	return r
}

func componentPayload(name, part string, qty int) map[string]any {
	return map[string]any{
		"_id":           "64b0",
		"componentName": name,
		"partNumber":    part,
		"manufacturer":  "Yageo",
		"quantity":      qty,
		"location":      "Shelf A2",
		"unitPrice":     0.05,
		"category":      "Resistors",
		"status":        "Active",
	}
}

func stubComponentsBackend(t *testing.T, responses map[string]map[string]any) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return upstream.NewClient(srv.URL)
}

func TestListPageRendersComponents(t *testing.T) {
	api := stubComponentsBackend(t, map[string]map[string]any{
		"/components": {
			"success": true,
			"data":    []any{componentPayload("Resistor 10k", "RC0805FR-0710KL", 1200)},
			"pagination": map[string]any{
				"current":    1,
				"total":      1,
				"count":      1,
				"totalCount": 1,
			},
		},
	})
	router := newInventoryRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Resistor 10k") {
		t.Fatalf("expected component name in body")
	}
	if !strings.Contains(body, "RC0805FR-0710KL") {
		t.Fatalf("expected part number in body")
	}
}

func TestExportHeaders(t *testing.T) {
	api := stubComponentsBackend(t, map[string]map[string]any{
		"/components/export": {
			"success": true,
			"data":    []any{componentPayload("Resistor 10k", "RC0805FR-0710KL", 1200)},
		},
	})
	router := newInventoryRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/inventory/export?category=Resistors", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	disposition := res.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="inventory-export-`) {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if !strings.Contains(res.Body.String(), "RC0805FR-0710KL") {
		t.Fatalf("expected part number in csv body")
	}
}

func TestExportEmptyRedirects(t *testing.T) {
	api := stubComponentsBackend(t, map[string]map[string]any{
		"/components/export": {
			"success": true,
			"data":    []any{},
		},
	})
	router := newInventoryRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/inventory/export?search=unobtanium", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if got := res.Header().Get("Location"); got != "/inventory" {
		t.Fatalf("expected redirect to /inventory, got %q", got)
	}
}

func TestLookupRendersMatchWithStockActions(t *testing.T) {
	api := stubComponentsBackend(t, map[string]map[string]any{
		"/components": {
			"success": true,
			"data":    []any{componentPayload("Resistor 10k", "RC0805FR-0710KL", 1200)},
		},
	})
	router := newInventoryRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/inventory/lookup?partNumber=RC0805FR-0710KL", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Resistor 10k") {
		t.Fatalf("expected matched component in body")
	}
	if !strings.Contains(body, "/inventory/64b0/inward") {
		t.Fatalf("expected inward link for the match")
	}
}

func TestLookupMissOffersAddForm(t *testing.T) {
	api := stubComponentsBackend(t, map[string]map[string]any{
		"/components": {
			"success": true,
			"data":    []any{},
		},
	})
	router := newInventoryRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/inventory/lookup?partNumber=LM9999", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "No component matches") {
		t.Fatalf("expected miss message in body")
	}
	if !strings.Contains(body, "/inventory/new?partNumber=LM9999") {
		t.Fatalf("expected prefilled add link in body")
	}
}

func TestAddFormPrefillsPartNumberFromLookup(t *testing.T) {
	api := stubComponentsBackend(t, map[string]map[string]any{
		"/components/predefined-categories": {
			"success": true,
			"data":    []any{"Resistors", "Capacitors"},
		},
	})
	router := newInventoryRouter(t, api)

	req := httptest.NewRequest(http.MethodGet, "/inventory/new?partNumber=LM9999", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `value="LM9999"`) {
		t.Fatalf("expected part number prefilled in form")
	}
}
