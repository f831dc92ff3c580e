package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ashram-web/satsang-server/internal/pkg/usercontext"
)

// HandleIssueDownload converts a positive entitlement decision into a
// short-lived signed URL. Denials come back 403 with the resolver's reason
// verbatim, so the UI can distinguish "not yet released" from "requires
// upgrade".
func HandleIssueDownload(c *fiber.Ctx) error {
	if downloadIssuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "object storage not configured"})
	}

	user := usercontext.GetUserContext(c)
	locale := c.Query("locale", "hi")

	result, err := downloadIssuer.IssueDownload(c.Context(), user.UserID, c.Params("slug"), locale, time.Now())
	if err != nil {
		// Infrastructure failure: retryable, never a deny.
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "download issuance failed, retry"})
	}
	if !result.Decision.Accessible {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":  "denied",
			"reason": result.Decision.Reason,
		})
	}

	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.JSON(fiber.Map{
		"url":        result.URL,
		"expires_at": result.ExpiresAt.UTC().Format(time.RFC3339),
		"reason":     result.Decision.Reason,
	})
}
