package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
)

func TestLoadPageFetchesThreeTables(t *testing.T) {
	var mu sync.Mutex
	queries := map[string]url.Values{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries[r.URL.Path] = r.URL.Query()
		mu.Unlock()
		_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"t1","operationType":"inward","quantity":5,"status":"Completed"}]}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL))
	page, err := service.LoadPage(context.Background(), "tok", "Pending", 10)
	require.NoError(t, err)
	require.Len(t, page.Inward, 1)
	require.Len(t, page.Outward, 1)
	require.Len(t, page.Activity, 1)

	require.Len(t, queries, 3)
	require.Equal(t, "Pending", queries["/orders/inward"].Get("status"))
	require.Equal(t, "10", queries["/orders/inward"].Get("limit"))
	require.Equal(t, "Pending", queries["/orders/outward"].Get("status"))
	// The activity feed ignores the status filter and uses its own limit.
	require.False(t, queries["/orders/activity"].Has("status"))
	require.Equal(t, "5", queries["/orders/activity"].Get("limit"))
}

func TestLoadPageFailsJointly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orders/outward" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"query timeout"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL))
	_, err := service.LoadPage(context.Background(), "tok", "", 10)
	require.Error(t, err)
	require.Equal(t, "query timeout", upstream.UserMessage(err, "fallback"))
}

func TestBadgeClass(t *testing.T) {
	require.Equal(t, "badge-success", BadgeClass(StatusCompleted))
	require.Equal(t, "badge-warning", BadgeClass(StatusPending))
	require.Equal(t, "badge-danger", BadgeClass(StatusRejected))
	require.Equal(t, "badge-muted", BadgeClass("Unknown"))
}
