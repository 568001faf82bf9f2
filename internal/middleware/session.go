package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/serroba/golinks/internal/auth"
	"github.com/serroba/golinks/internal/handlers"
)

// Session reconstructs the verified user from the session cookie and
// attaches it to the request context. Anonymous and invalid sessions pass
// through unauthenticated; handlers that mutate state reject them with
// 401. A session whose user record has disappeared is treated the same as
// no session at all.
func Session(_ huma.API, codec *auth.Codec, jwtSecret []byte) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cookie, err := huma.ReadCookie(ctx, handlers.SessionCookieName)
		if err != nil {
			next(ctx)

			return
		}

		claims := &jwt.RegisteredClaims{}

		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(_ *jwt.Token) (any, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			next(ctx)

			return
		}

		user, err := codec.Deserialize(ctx.Context(), claims.Subject)
		if err != nil {
			next(ctx)

			return
		}

		ctx = huma.WithContext(ctx, auth.ContextWithUser(ctx.Context(), user))

		next(ctx)
	}
}
