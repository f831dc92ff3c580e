package usercontext

import "github.com/gofiber/fiber/v2"

const localsKey = "USER_CONTEXT"

// UserContext represents the resolved caller identity for a request. The
// authentication transport lives in an external gateway; by the time a
// request arrives here the identity is already verified.
type UserContext struct {
	UserID     uint `json:"user_id"`
	IsLoggedIn bool `json:"is_logged_in"`
	IsAdmin    bool `json:"is_admin"`
}

// Set stores the user context on the request.
func Set(c *fiber.Ctx, ctx UserContext) {
	c.Locals(localsKey, ctx)
}

// GetUserContext retrieves the user context from fiber context.
// Returns a default anonymous context if none is set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(localsKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsAdmin: false}
}

// IsLoggedIn checks if the current caller is authenticated.
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 for anonymous callers.
func GetUserID(c *fiber.Ctx) uint {
	return GetUserContext(c).UserID
}
