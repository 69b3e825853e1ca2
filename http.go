package bookshelf

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-bookshelf/middleware/jwtware"
)

// tokenValidatorAdapter narrows TokenService to the interface the middleware
// consumes, keeping the packages decoupled.
type tokenValidatorAdapter struct {
	svc TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.svc.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ProtectedRoute builds the guard for the API. Every request through it
// needs a valid bearer token, and the policy decides the minimum role per
// method and path. Validated claims are propagated to the request context so
// handlers can read them with GetClaims.
func ProtectedRoute(cfg Config, svc TokenService, policy *RoutePolicy, errorHandler fiber.ErrorHandler) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: tokenValidatorAdapter{svc: svc},
		Policy:         policy,
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}
