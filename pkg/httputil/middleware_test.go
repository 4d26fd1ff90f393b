package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmstock/pharmstock-backend/pkg/actor"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "pharmstock-auth"
)

func signToken(t *testing.T, secret, issuer, subject string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       subject,
		"iss":       issuer,
		"email":     "user@example.com",
		"full_name": "Test User",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func principalProbe(t *testing.T, authorization string) *actor.Actor {
	t.Helper()
	log := logger.New("test", "development")

	var captured *actor.Actor
	handler := httputil.Principal(testSecret, testIssuer, log)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = actor.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "requests always pass through")
	return captured
}

func TestPrincipal_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, testIssuer, "user-1")

	act := principalProbe(t, "Bearer "+token)
	require.NotNil(t, act)
	assert.Equal(t, "user-1", act.ID)
	assert.Equal(t, "user@example.com", act.Email)
}

func TestPrincipal_NoToken(t *testing.T) {
	act := principalProbe(t, "")
	assert.Nil(t, act, "no token means no actor, denial happens at the policy")
}

func TestPrincipal_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", testIssuer, "user-1")

	act := principalProbe(t, "Bearer "+token)
	assert.Nil(t, act)
}

func TestPrincipal_WrongIssuer(t *testing.T) {
	token := signToken(t, testSecret, "someone-else", "user-1")

	act := principalProbe(t, "Bearer "+token)
	assert.Nil(t, act)
}

func TestPrincipal_GarbageToken(t *testing.T) {
	act := principalProbe(t, "Bearer not-a-jwt")
	assert.Nil(t, act)
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	var captured string
	handler := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = httputil.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_PropagatedWhenPresent(t *testing.T) {
	var captured string
	handler := httputil.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = httputil.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", captured)
}
