package auth_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/s3manager"
	"github.com/sagarc03/s3manager/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signHS256(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "s3manager-test",
		Audience:  jwt.ClaimStrings{"s3manager"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func TestNewJWTVerifier_ShortSecret(t *testing.T) {
	_, err := auth.NewJWTVerifier(auth.JWTConfig{Secret: "short"})
	assert.Error(t, err)
}

func TestJWTVerifier_Verify(t *testing.T) {
	v, err := auth.NewJWTVerifier(auth.JWTConfig{
		Secret:   testSecret,
		Issuer:   "s3manager-test",
		Audience: "s3manager",
	})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		id, err := v.Verify(ctx, signHS256(t, testSecret, validClaims()))
		require.NoError(t, err)
		assert.Equal(t, "user-1", id.UserID)
		assert.Equal(t, "s3manager-test", id.Issuer)
	})

	tt := []struct {
		Name  string
		Token func(t *testing.T) string
	}{
		{Name: "wrong secret", Token: func(t *testing.T) string {
			return signHS256(t, "ffffffffffffffffffffffffffffffff", validClaims())
		}},
		{Name: "expired", Token: func(t *testing.T) string {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return signHS256(t, testSecret, c)
		}},
		{Name: "no expiry", Token: func(t *testing.T) string {
			c := validClaims()
			c.ExpiresAt = nil
			return signHS256(t, testSecret, c)
		}},
		{Name: "wrong issuer", Token: func(t *testing.T) string {
			c := validClaims()
			c.Issuer = "someone-else"
			return signHS256(t, testSecret, c)
		}},
		{Name: "wrong audience", Token: func(t *testing.T) string {
			c := validClaims()
			c.Audience = jwt.ClaimStrings{"other"}
			return signHS256(t, testSecret, c)
		}},
		{Name: "missing subject", Token: func(t *testing.T) string {
			c := validClaims()
			c.Subject = ""
			return signHS256(t, testSecret, c)
		}},
		{Name: "none algorithm", Token: func(t *testing.T) string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return token
		}},
		{Name: "garbage", Token: func(t *testing.T) string { return "not-a-token" }},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := v.Verify(ctx, tc.Token(t))
			assert.ErrorIs(t, err, s3manager.ErrUnauthenticated)
		})
	}
}

func TestOIDCVerifier_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	const issuer = "https://issuer.example.com"
	v := auth.NewOIDCVerifierWithKeySet(
		auth.OIDCConfig{IssuerURL: issuer, ClientID: "s3manager"},
		&oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{key.Public()}},
	)
	ctx := context.Background()

	sign := func(t *testing.T, claims jwt.RegisteredClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	claims := jwt.RegisteredClaims{
		Subject:   "oidc-user",
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{"s3manager"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	t.Run("valid token", func(t *testing.T) {
		id, err := v.Verify(ctx, sign(t, claims))
		require.NoError(t, err)
		assert.Equal(t, "oidc-user", id.UserID)
		assert.Equal(t, issuer, id.Issuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := claims
		c.Audience = jwt.ClaimStrings{"other-client"}
		_, err := v.Verify(ctx, sign(t, c))
		assert.ErrorIs(t, err, s3manager.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := claims
		c.Issuer = "https://evil.example.com"
		_, err := v.Verify(ctx, sign(t, c))
		assert.ErrorIs(t, err, s3manager.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		c := claims
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(ctx, sign(t, c))
		assert.ErrorIs(t, err, s3manager.ErrUnauthenticated)
	})
}

func TestNewOIDCVerifier_RequiresConfig(t *testing.T) {
	_, err := auth.NewOIDCVerifier(context.Background(), auth.OIDCConfig{ClientID: "x"})
	assert.Error(t, err)
	_, err = auth.NewOIDCVerifier(context.Background(), auth.OIDCConfig{IssuerURL: "https://x"})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tt := []struct {
		Name   string
		Header string
		Want   string
	}{
		{Name: "bearer", Header: "Bearer abc.def", Want: "abc.def"},
		{Name: "lowercase scheme", Header: "bearer abc", Want: "abc"},
		{Name: "basic", Header: "Basic dXNlcjpwYXNz", Want: ""},
		{Name: "empty", Header: "", Want: ""},
		{Name: "scheme only", Header: "Bearer", Want: ""},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.Header != "" {
				r.Header.Set("Authorization", tc.Header)
			}
			assert.Equal(t, tc.Want, auth.BearerToken(r))
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	assert.Equal(t, "", auth.UserIDFromContext(context.Background()))
	ctx := auth.WithUserID(context.Background(), "u")
	assert.Equal(t, "u", auth.UserIDFromContext(ctx))
}

func TestSignJWT(t *testing.T) {
	cfg := auth.JWTConfig{Secret: testSecret, Issuer: "s3manager-test", Audience: "s3manager"}

	t.Run("round trips through verifier", func(t *testing.T) {
		token, err := auth.SignJWT(cfg, "user-9", time.Minute)
		require.NoError(t, err)

		v, err := auth.NewJWTVerifier(cfg)
		require.NoError(t, err)

		id, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "user-9", id.UserID)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := auth.SignJWT(auth.JWTConfig{Secret: "short"}, "user-9", time.Minute)
		assert.Error(t, err)

		_, err = auth.SignJWT(cfg, " ", time.Minute)
		assert.Error(t, err)

		_, err = auth.SignJWT(cfg, "user-9", 0)
		assert.Error(t, err)
	})
}
