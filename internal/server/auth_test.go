package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/eduflux/internal/testutil"
)

func TestRequireAuth(t *testing.T) {
	validToken, err := GenerateToken(testutil.TestJWTSecret, Identity{
		ExternalID: "auth0|abc",
		Email:      "a@example.com",
		Name:       "Alice",
	}, time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateToken(testutil.TestJWTSecret, Identity{
		ExternalID: "auth0|abc",
	}, -time.Hour)
	require.NoError(t, err)

	wrongSecretToken, err := GenerateToken("another-secret", Identity{
		ExternalID: "auth0|abc",
	}, time.Hour)
	require.NoError(t, err)

	missingSubjectToken, err := GenerateToken(testutil.TestJWTSecret, Identity{}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name         string
		authHeader   string
		wantStatus   int
		wantIdentity *Identity
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + validToken,
			wantStatus: http.StatusOK,
			wantIdentity: &Identity{
				ExternalID: "auth0|abc",
				Email:      "a@example.com",
				Name:       "Alice",
			},
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + expiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing secret",
			authHeader: "Bearer " + wrongSecretToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing subject",
			authHeader: "Bearer " + missingSubjectToken,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIdentity *Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				identity, ok := IdentityFromContext(r.Context())
				require.True(t, ok)
				gotIdentity = &identity
				w.WriteHeader(http.StatusOK)
			})

			request := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tt.authHeader != "" {
				request.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()

			RequireAuth(testutil.TestJWTSecret)(next).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantIdentity != nil {
				require.NotNil(t, gotIdentity)
				assert.Equal(t, *tt.wantIdentity, *gotIdentity)
				return
			}
			assert.Nil(t, gotIdentity)

			// Rejections are always JSON so browser clients can parse them.
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body["error"])
		})
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(testutil.TestJWTSecret, Identity{
		ExternalID: "auth0|abc",
		Email:      "a@example.com",
		Name:       "Alice",
	}, time.Hour)
	require.NoError(t, err)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(testutil.TestJWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	assert.Equal(t, "eduflux", claims.Issuer)
	assert.Equal(t, "auth0|abc", claims.Subject)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}
