package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematick/internal/model"
)

// errNoIdentity marks a request that passed through the auth middleware
// without a usable subject claim.
var errNoIdentity = errors.New("handler: missing identity in request context")

// currentUserID extracts the authenticated user id set by the JWT
// middleware. The sub claim may arrive as a string or a float64
// depending on how the token was minted.
func currentUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, errNoIdentity
		}
		return id, nil
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	default:
		return 0, errNoIdentity
	}
}

// currentRole returns the role claim set by the JWT middleware, or an
// empty string when absent.
func currentRole(c echo.Context) string {
	if r, ok := c.Get("role").(string); ok {
		return r
	}
	return ""
}

// isAdmin reports whether the authenticated caller holds the admin role.
func isAdmin(c echo.Context) bool {
	return currentRole(c) == model.RoleAdmin
}
