package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/lims-dash/lims-dash/internal/auth"
	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
)

func testSession(t *testing.T) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	manager := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", 0, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestAskAppendsBothTurns(t *testing.T) {
	var received struct {
		Message     string      `json:"message"`
		Chat        []chatTurn  `json:"chat"`
		UserDetails userDetails `json:"userDetails"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"output":"We have 40 in stock."}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL))
	sess := testSession(t)
	user := auth.User{ID: "u1", Name: "Asha", Email: "asha@lab.test", Role: auth.RoleUser}

	transcript, err := service.Ask(context.Background(), sess, "tok", user, "How many LM358 do we have?")
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	require.Equal(t, "user", transcript[0].Role)
	require.Equal(t, "assistant", transcript[1].Role)
	require.Equal(t, "We have 40 in stock.", transcript[1].Content)

	// The new message travels on its own field, not in the chat history.
	require.Equal(t, "How many LM358 do we have?", received.Message)
	require.Empty(t, received.Chat)
	require.Equal(t, "asha@lab.test", received.UserDetails.Email)

	// Transcript survives in the session.
	require.Len(t, service.Transcript(sess), 2)

	// A second turn carries the first two as context.
	_, err = service.Ask(context.Background(), sess, "tok", user, "And BC547?")
	require.NoError(t, err)
	require.Len(t, received.Chat, 2)
	require.Equal(t, "user", received.Chat[0].From)
	require.Equal(t, "assistant", received.Chat[1].From)
}

func TestAskKeepsUserTurnOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to get assistant reply"}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL))
	sess := testSession(t)

	transcript, err := service.Ask(context.Background(), sess, "tok", auth.User{}, "hello?")
	require.Error(t, err)
	require.Len(t, transcript, 1)
	require.Equal(t, "user", transcript[0].Role)
	require.Len(t, service.Transcript(sess), 1)
}

func TestTranscriptWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":"ok"}`))
	}))
	t.Cleanup(server.Close)

	service := NewService(upstream.NewClient(server.URL))
	sess := testSession(t)

	for i := 0; i < HistoryWindow; i++ {
		_, err := service.Ask(context.Background(), sess, "tok", auth.User{}, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}
	transcript := service.Transcript(sess)
	require.Len(t, transcript, HistoryWindow)
	// The oldest turns fell off the window.
	require.NotEqual(t, "question 0", transcript[0].Content)
}

func TestReset(t *testing.T) {
	sess := testSession(t)
	service := NewService(nil)
	sess.Set("assistant_transcript", `[{"role":"user","content":"hi"}]`)
	require.Len(t, service.Transcript(sess), 1)
	service.Reset(sess)
	require.Empty(t, service.Transcript(sess))
}
