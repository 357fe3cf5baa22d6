package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testCSRFSession(t *testing.T) *Session {
	t.Helper()
	manager := testManager(t)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	return sess
}

func TestEnsureTokenIsStablePerSession(t *testing.T) {
	csrf := NewCSRFManager("csrfsecret")
	sess := testCSRFSession(t)

	first, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, first, sess.Get(CSRFSessionKey))
}

func TestVerifyToken(t *testing.T) {
	csrf := NewCSRFManager("csrfsecret")
	sess := testCSRFSession(t)

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	require.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "forged-token"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), nil, token), ErrCSRFTokenMissing)
}

func TestVerifyTokenWithoutSessionToken(t *testing.T) {
	csrf := NewCSRFManager("csrfsecret")
	sess := testCSRFSession(t)

	// A session that never rendered a form holds no token to compare.
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "anything"), ErrCSRFTokenMissing)
}

func TestTokensDifferAcrossSessions(t *testing.T) {
	csrf := NewCSRFManager("csrfsecret")

	a, err := csrf.EnsureToken(context.Background(), testCSRFSession(t))
	require.NoError(t, err)
	b, err := csrf.EnsureToken(context.Background(), testCSRFSession(t))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
