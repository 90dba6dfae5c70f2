package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const claimsKey contextKey = "claims"

var ErrNoPrincipal = errors.New("no authenticated principal in context")

// WithClaims attaches verified token claims to the context.
func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// CurrentClaims retrieves the verified claims of the current request.
// Returns ErrNoPrincipal when the request was not authenticated.
func CurrentClaims(ctx context.Context) (Claims, error) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		log.Trace("claims not found in context")
		return Claims{}, ErrNoPrincipal
	}
	return claims, nil
}

// CurrentAccountId returns the userId claim of the current request.
func CurrentAccountId(ctx context.Context) (string, error) {
	claims, err := CurrentClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.UserId, nil
}

// CurrentBusinessId returns the businessId claim of the current request.
func CurrentBusinessId(ctx context.Context) (string, error) {
	claims, err := CurrentClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.BusinessId, nil
}
