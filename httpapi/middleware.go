package httpapi

import (
	"strings"

	"newsfeed/auth"

	"github.com/goliatone/go-router"
)

const authScheme = "Bearer"

// Protected gates a route behind a valid session token. The resolved principal
// is stored in router locals under contextKey; account status is re-checked on
// every request so resigned users are locked out before token expiry.
func Protected(sessions *auth.SessionManager, contextKey string, logger auth.Logger) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := tokenFromHeader(ctx)
			if err != nil {
				return RespondError(ctx, logger, err)
			}

			principal, err := sessions.Authenticate(ctx.Context(), raw)
			if err != nil {
				return RespondError(ctx, logger, err)
			}

			ctx.Locals(contextKey, principal)

			return next(ctx)
		}
	}
}

// PrincipalFromContext retrieves the principal stored by Protected.
func PrincipalFromContext(ctx router.Context, contextKey string) (*auth.Principal, bool) {
	principal, ok := ctx.Locals(contextKey).(*auth.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}

func tokenFromHeader(ctx router.Context) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")

	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:]), nil
	}

	return "", auth.ErrTokenMalformed
}
