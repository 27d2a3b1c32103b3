package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincatalog/internal/domain"
)

func testVerifier(t *testing.T, role string) (*JWKSVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	kf := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	return newVerifier(kf, role, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerifyToken(t *testing.T) {
	v, key := testVerifier(t, "authenticated")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name    string
		claims  Claims
		wantErr bool
	}{
		{
			name:   "valid",
			claims: Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}, Role: "authenticated"},
		},
		{
			name:    "missing subject",
			claims:  Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}, Role: "authenticated"},
			wantErr: true,
		},
		{
			name:    "wrong role",
			claims:  Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: future}, Role: "anon"},
			wantErr: true,
		},
		{
			name: "expired",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
				Role:             "authenticated",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(sign(t, key, tt.claims))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", claims.GetUserID())
		})
	}
}

func TestVerifyToken_RejectsHMAC(t *testing.T) {
	v, _ := testVerifier(t, "")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = v.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
