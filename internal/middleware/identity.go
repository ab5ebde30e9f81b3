package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a user identifier lookup for building per-user
// rate-limit keys.  When no user is authenticated, "anon" is returned.

import (
    "github.com/labstack/echo/v4"
)

// currentUserID extracts the identifier JWTAuth stored in context. It
// returns "anon" when no user is authenticated.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok && s != "" { return s }
    }
    if v := c.Get("userID"); v != nil {
        if s, ok := v.(string); ok && s != "" { return s }
    }
    return "anon"
}
