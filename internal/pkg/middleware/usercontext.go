package middleware

import (
	"strconv"
	"strings"

	"github.com/ashram-web/satsang-server/internal/pkg/env"
	"github.com/ashram-web/satsang-server/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware resolves the caller identity for every request.
// The auth gateway terminates OTP/session handling and forwards the verified
// user ID in X-User-Id; requests without it run as anonymous.
func UserContextMiddleware(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Get("X-User-Id"))
	if raw == "" {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}

	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || userID == 0 {
		usercontext.Set(c, usercontext.UserContext{})
		return c.Next()
	}

	usercontext.Set(c, usercontext.UserContext{
		UserID:     uint(userID),
		IsLoggedIn: true,
		IsAdmin:    isAdminRequest(c),
	})
	return c.Next()
}

// RequireUser rejects anonymous callers.
func RequireUser(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}
	return c.Next()
}

// RequireAdmin rejects callers without the admin token.
func RequireAdmin(c *fiber.Ctx) error {
	if !isAdminRequest(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Admin access required"})
	}
	return c.Next()
}

// RequirePaymentCollaborator guards the payment confirmation webhooks.
func RequirePaymentCollaborator(c *fiber.Ctx) error {
	token := env.GetEnv("PAYMENT_WEBHOOK_TOKEN", "")
	if token == "" || c.Get("X-Webhook-Token") != token {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Invalid webhook token"})
	}
	return c.Next()
}

func isAdminRequest(c *fiber.Ctx) bool {
	token := env.GetEnv("ADMIN_API_TOKEN", "")
	return token != "" && c.Get("X-Admin-Token") == token
}
