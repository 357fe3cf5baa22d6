package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
)

func TestListDecodesUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/users", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"count":2,"data":[
			{"_id":"u1","name":"Asha","email":"asha@lab.test","role":"Admin","isActive":true},
			{"_id":"u2","name":"Ravi","email":"ravi@lab.test","role":"User","isActive":false}]}`))
	}))
	t.Cleanup(server.Close)

	users, err := NewService(upstream.NewClient(server.URL + "/api")).List(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "u1", users[0].ID)
	require.False(t, users[1].IsActive)
}

func TestUpdateSendsOnlyChangedFields(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/auth/users/u2", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"u2","role":"Admin","isActive":true}}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL + "/api"))
	user, err := service.Update(context.Background(), "tok", "u2", UpdateRequest{Role: "Admin"})
	require.NoError(t, err)
	require.Equal(t, "Admin", user.Role)

	// omitempty keeps the untouched active flag out of the payload.
	require.Equal(t, "Admin", body["role"])
	require.NotContains(t, body, "isActive")
}

func TestCreateSurfacesBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Email already registered"}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL))
	_, err := service.Create(context.Background(), "tok", CreateRequest{
		Name: "Dup", Email: "dup@lab.test", Password: "pw123456", Role: "User",
	})
	require.Error(t, err)
	require.Equal(t, "Email already registered", upstream.UserMessage(err, "fallback"))
}
