package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sagarc03/s3manager"
)

// Identity is a verified caller.
type Identity struct {
	UserID string
	Issuer string
}

// Verifier checks a raw bearer token. Every failure wraps
// s3manager.ErrUnauthenticated.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// OIDCConfig holds OIDC provider configuration.
type OIDCConfig struct {
	IssuerURL string // e.g. https://accounts.example.com
	ClientID  string // expected audience
}

// OIDCVerifier validates OIDC ID tokens.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at cfg.IssuerURL.
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*OIDCVerifier, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("new oidc verifier: issuer url is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("new oidc verifier: client id is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("new oidc verifier: provider init: %w", err)
	}

	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// NewOIDCVerifierWithKeySet builds a verifier without discovery.
func NewOIDCVerifierWithKeySet(cfg OIDCConfig, keySet oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(cfg.IssuerURL, keySet, &oidc.Config{ClientID: cfg.ClientID}),
	}
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, fmt.Errorf("verify oidc token: %w: %w", s3manager.ErrUnauthenticated, err)
	}

	if idToken.Subject == "" {
		return Identity{}, fmt.Errorf("verify oidc token: %w: missing subject", s3manager.ErrUnauthenticated)
	}

	return Identity{UserID: idToken.Subject, Issuer: idToken.Issuer}, nil
}

// JWTConfig configures HS256 token verification.
type JWTConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewJWTVerifier creates a JWTVerifier. Tokens must carry exp and sub.
func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("new jwt verifier: secret must be at least 16 bytes")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &JWTVerifier{secret: []byte(cfg.Secret), opts: opts}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("verify jwt: %w: %w", s3manager.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("verify jwt: %w: invalid token", s3manager.ErrUnauthenticated)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, fmt.Errorf("verify jwt: %w: missing subject", s3manager.ErrUnauthenticated)
	}

	return Identity{UserID: claims.Subject, Issuer: claims.Issuer}, nil
}

// SignJWT issues an HS256 token for subject that expires after ttl.
// It is meant for local development against a server in jwt mode.
func SignJWT(cfg JWTConfig, subject string, ttl time.Duration) (string, error) {
	if len(cfg.Secret) < 16 {
		return "", errors.New("sign jwt: secret must be at least 16 bytes")
	}
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("sign jwt: subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("sign jwt: ttl must be positive")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return token, nil
}
