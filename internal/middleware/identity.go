package middleware

// identity.go holds the identity-extraction helper shared across
// middleware files.  JWTAuth stores the token subject under "user_id";
// the rate limiter uses it to build per-user keys.  Requests without a
// token key as "anon".

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user's identifier from the
// context, or "anon" when the request carries no valid token.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v == "" {
			return "anon"
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}
