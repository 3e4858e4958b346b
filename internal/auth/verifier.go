package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/book-catalog/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Verifier turns a bearer token into the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (models.Actor, error)
}

func actorFromClaims(c *Claims) (models.Actor, error) {
	sub, _ := c.GetSubject()
	if sub == "" {
		return models.Actor{}, errors.New("token has no subject")
	}
	return models.Actor{UserID: sub, Email: c.Email}, nil
}

func parserOptions(issuer, audience string) []jwt.ParserOption {
	var opts []jwt.ParserOption
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

// HMACVerifier checks tokens signed with a shared secret.
type HMACVerifier struct {
	secret string
	opts   []jwt.ParserOption
}

func NewHMACVerifier(secret, issuer, audience string) *HMACVerifier {
	return &HMACVerifier{secret: secret, opts: parserOptions(issuer, audience)}
}

func (v *HMACVerifier) Verify(_ context.Context, token string) (models.Actor, error) {
	claims, err := ParseJWT(v.secret, token, v.opts...)
	if err != nil {
		return models.Actor{}, err
	}
	return actorFromClaims(claims)
}

// JWKSVerifier checks RS/ES-signed tokens against the identity provider's published key set.
type JWKSVerifier struct {
	jwks keyfunc.Keyfunc
	opts []jwt.ParserOption
}

// NewJWKSVerifier fetches the key set once and keeps it refreshed until ctx is cancelled.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer, audience string) (*JWKSVerifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks %s: %w", jwksURL, err)
	}
	opts := append(parserOptions(issuer, audience),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "PS256"}),
		jwt.WithExpirationRequired(),
	)
	return &JWKSVerifier{jwks: k, opts: opts}, nil
}

func (v *JWKSVerifier) Verify(_ context.Context, tokenStr string) (models.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, v.jwks.Keyfunc, v.opts...)
	if err != nil {
		return models.Actor{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Actor{}, errors.New("invalid token")
	}
	return actorFromClaims(claims)
}

// ChainVerifier accepts a token if any of its verifiers does.
type ChainVerifier struct {
	verifiers []Verifier
	log       *zap.Logger
}

func NewChainVerifier(log *zap.Logger, verifiers ...Verifier) *ChainVerifier {
	return &ChainVerifier{verifiers: verifiers, log: log}
}

func (c *ChainVerifier) Verify(ctx context.Context, token string) (models.Actor, error) {
	if len(c.verifiers) == 0 {
		return models.Actor{}, fmt.Errorf("%w: no token verifier configured", ErrUnauthenticated)
	}
	var errs []error
	for _, v := range c.verifiers {
		actor, err := v.Verify(ctx, token)
		if err == nil {
			return actor, nil
		}
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	c.log.Debug("token rejected", zap.Error(err))
	return models.Actor{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
}
