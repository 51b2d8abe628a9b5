package mw

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReqCrypto/sol-meme-scanner/internal/security"
)

// generate test RSA keys
func generateTestKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

// create test JWT token
func createTestToken(t *testing.T, privateKey *rsa.PrivateKey, sub, aud, iss string, expiry time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		Audience:  jwt.ClaimStrings{aud},
		Issuer:    iss,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenString, err := token.SignedString(privateKey)
	require.NoError(t, err)
	return tokenString
}

func TestNewJWTMiddleware(t *testing.T) {
	t.Run("panic_when_verifier_is_nil", func(t *testing.T) {
		assert.Panics(t, func() {
			NewJWTMiddleware(nil)
		})
	})

	t.Run("successful_creation", func(t *testing.T) {
		_, pubKey := generateTestKeys(t)
		verifier := &security.RS256Verifier{
			PubKey: pubKey,
			Aud:    "test-aud",
			Iss:    "test-iss",
		}

		middleware := NewJWTMiddleware(verifier)
		assert.NotNil(t, middleware)
		assert.Equal(t, verifier, middleware.verifier)
	})
}

func TestJWTMiddleware_Handler_Success(t *testing.T) {
	privKey, pubKey := generateTestKeys(t)

	verifier := &security.RS256Verifier{
		PubKey: pubKey,
		Aud:    "test-service",
		Iss:    "test-issuer",
		Leeway: 10 * time.Second,
	}

	middleware := NewJWTMiddleware(verifier)

	token := createTestToken(t, privKey, "user123", "test-service", "test-issuer", time.Hour)

	nextHandlerCalled := false
	var capturedSubject string

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextHandlerCalled = true
		capturedSubject = subjectFromContext(r)
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Handler(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/top", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.True(t, nextHandlerCalled, "next handler should be called")
	assert.Equal(t, "user123", capturedSubject, "subject should be extracted to context")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_Handler_MissingToken(t *testing.T) {
	_, pubKey := generateTestKeys(t)

	middleware := NewJWTMiddleware(&security.RS256Verifier{
		PubKey: pubKey,
		Aud:    "test-service",
		Iss:    "test-issuer",
	})

	nextHandlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextHandlerCalled = true
	})

	handler := middleware.Handler(nextHandler)

	testCases := []struct {
		name       string
		authHeader string
	}{
		{name: "no_authorization_header", authHeader: ""},
		{name: "missing_bearer_prefix", authHeader: "sometoken"},
		{name: "only_bearer_word", authHeader: "Bearer"},
		{name: "bearer_with_empty_token", authHeader: "Bearer   "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nextHandlerCalled = false

			req := httptest.NewRequest(http.MethodGet, "/api/top", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.False(t, nextHandlerCalled, "next handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "authorization header must be: Bearer <token>")
		})
	}
}

func TestJWTMiddleware_Handler_RejectedTokens(t *testing.T) {
	privKey, pubKey := generateTestKeys(t)
	otherPrivKey, _ := generateTestKeys(t)

	middleware := NewJWTMiddleware(&security.RS256Verifier{
		PubKey: pubKey,
		Aud:    "test-service",
		Iss:    "test-issuer",
	})

	testCases := []struct {
		name  string
		token string
	}{
		{
			name:  "malformed_token",
			token: "not.a.valid.jwt.token",
		},
		{
			name:  "expired_token",
			token: createTestToken(t, privKey, "user123", "test-service", "test-issuer", -time.Hour),
		},
		{
			name:  "wrong_audience",
			token: createTestToken(t, privKey, "user123", "wrong-audience", "test-issuer", time.Hour),
		},
		{
			name:  "wrong_issuer",
			token: createTestToken(t, privKey, "user123", "test-service", "wrong-issuer", time.Hour),
		},
		{
			name:  "wrong_signature",
			token: createTestToken(t, otherPrivKey, "user123", "test-service", "test-issuer", time.Hour),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nextHandlerCalled := false
			handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextHandlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/top", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.False(t, nextHandlerCalled, "next handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWTMiddleware_Handler_ContextPropagation(t *testing.T) {
	privKey, pubKey := generateTestKeys(t)

	middleware := NewJWTMiddleware(&security.RS256Verifier{
		PubKey: pubKey,
		Aud:    "test-service",
		Iss:    "test-issuer",
	})

	token := createTestToken(t, privKey, "user-with-special-id", "test-service", "test-issuer", time.Hour)

	type testKey struct{}

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user-with-special-id", subjectFromContext(r))

		// values of the original request context must survive
		assert.Equal(t, "test-value", r.Context().Value(testKey{}))

		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Handler(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/top", nil)
	req = req.WithContext(context.WithValue(req.Context(), testKey{}, "test-value"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubjectFromContext(t *testing.T) {
	t.Run("subject_exists", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), claimsCtxKey{}, "test-subject")
		req := httptest.NewRequest(http.MethodGet, "/api/top", nil).WithContext(ctx)

		assert.Equal(t, "test-subject", subjectFromContext(req))
	})

	t.Run("subject_not_exists", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/top", nil)

		assert.Equal(t, "", subjectFromContext(req))
	})

	t.Run("wrong_type_in_context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), claimsCtxKey{}, 12345)
		req := httptest.NewRequest(http.MethodGet, "/api/top", nil).WithContext(ctx)

		assert.Equal(t, "", subjectFromContext(req))
	})
}
