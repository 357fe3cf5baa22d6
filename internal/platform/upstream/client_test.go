package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Get(context.Background(), "tok-123", "/components", nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
}

func TestAnonymousRequestOmitsHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), "", "/components/predefined-categories", nil)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestUnauthorizedSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Not authorized to access this route"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), "expired", "/auth/me", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestBackendMessagePropagated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Insufficient stock. Available: 50, Requested: 60"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Post(context.Background(), "tok", "/components/1/outward", map[string]any{"quantity": 60})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Insufficient stock. Available: 50, Requested: 60", apiErr.Message)
	require.Equal(t, apiErr.Message, UserMessage(err, "fallback"))
}

func TestMalformedEnvelopeFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<!doctype html><html></html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), "tok", "/dashboard/overview", nil)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestQueryParametersEncoded(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	q := url.Values{}
	q.Set("search", "10k resistor")
	q.Set("lowStock", "false")
	_, err := NewClient(srv.URL).Get(context.Background(), "tok", "/components", q)
	require.NoError(t, err)
	require.Equal(t, "10k resistor", gotQuery.Get("search"))
	require.Equal(t, "false", gotQuery.Get("lowStock"))
}

func TestEnvelopeDecodeMismatch(t *testing.T) {
	env := &Envelope{Success: true, Data: []byte(`{"quantity":"not-a-number"}`)}
	var dest struct {
		Quantity int `json:"quantity"`
	}
	err := env.Decode("/components/1", &dest)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
}
