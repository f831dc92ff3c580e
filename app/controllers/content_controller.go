package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/contentschedule"
	"github.com/ashram-web/satsang-server/internal/pkg/usercontext"
)

// HandleFreeContent lists zero-price plan content. Open to anonymous
// callers; the resolver bypasses subscription lookup for free content.
func HandleFreeContent(c *fiber.Ctx) error {
	locale := c.Query("locale", "hi")
	items, err := accessResolver.UserAccessibleContent(c.Context(), 0, locale, time.Now())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "content lookup failed, retry"})
	}
	return c.JSON(fiber.Map{"content": contentViews(items)})
}

// HandleMyContent lists everything the caller can access right now: free
// content plus the published, entitled content of their active plan.
func HandleMyContent(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	locale := c.Query("locale", "hi")

	items, err := accessResolver.UserAccessibleContent(c.Context(), user.UserID, locale, time.Now())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "content lookup failed, retry"})
	}
	return c.JSON(fiber.Map{"content": contentViews(items)})
}

// HandleCheckAccess exposes the raw access decision for one content item so
// surfaces can render lock states without requesting a download.
func HandleCheckAccess(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	locale := c.Query("locale", "hi")

	decision, err := accessResolver.CheckAccess(c.Context(), user.UserID, c.Params("slug"), locale, time.Now())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "entitlement check failed, retry"})
	}
	return c.JSON(decision)
}

type contentRequest struct {
	Slug         string `json:"slug" validate:"required,max=191"`
	Locale       string `json:"locale" validate:"max=8"`
	Title        string `json:"title" validate:"required,max=255"`
	Type         string `json:"type" validate:"required,oneof=bhajan mantra ebook video"`
	PlanID       string `json:"plan_id" validate:"required,max=50"`
	ObjectKey    string `json:"object_key" validate:"required,max=512"`
	ThumbnailKey string `json:"thumbnail_key" validate:"max=512"`
	DisplayOrder int    `json:"display_order"`
}

// HandleCreateContent stores a new content item (editor only).
func HandleCreateContent(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	item, err := contentService.CreateContent(c.Context(), contentInput(req))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contentView(*item))
}

// HandleUpdateContent edits one locale variant (editor only).
func HandleUpdateContent(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	locale := c.Query("locale", "hi")
	item, err := contentService.UpdateContent(c.Context(), c.Params("slug"), locale, contentInput(req))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(contentView(*item))
}

// HandleDeleteContent removes a content item and its schedule assignments
// (editor only).
func HandleDeleteContent(c *fiber.Ctx) error {
	if err := contentService.DeleteContent(c.Context(), c.Params("slug")); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListContentByPlan lists a plan's content for editors, scheduled or
// not, published or not.
func HandleListContentByPlan(c *fiber.Ctx) error {
	items, err := contentService.ListContentByPlan(c.Context(), c.Params("planId"), c.Query("type"), c.Query("locale"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"content": contentViews(items)})
}

type assignMonthRequest struct {
	Year     int      `json:"year" validate:"required,gte=2000"`
	Month    int      `json:"month" validate:"required,gte=1,lte=12"`
	Contents []string `json:"contents" validate:"required,min=1,dive,required"`
}

// HandleAssignMonth sets the ordered content list of a release month
// (editor only).
func HandleAssignMonth(c *fiber.Ctx) error {
	var req assignMonthRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	entry, err := contentService.AssignToMonth(c.Context(), c.Params("planId"), req.Year, req.Month, req.Contents)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(scheduleView(*entry))
}

type publishMonthRequest struct {
	Year  int `json:"year" validate:"required,gte=2000"`
	Month int `json:"month" validate:"required,gte=1,lte=12"`
}

// HandlePublishMonth releases a month to subscribers (editor only).
// One-directional: there is no unpublish endpoint.
func HandlePublishMonth(c *fiber.Ctx) error {
	var req publishMonthRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	entry, err := contentService.PublishMonth(c.Context(), c.Params("planId"), req.Year, req.Month)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(scheduleView(*entry))
}

// HandleListMonths lists a plan's schedule entries in release order.
func HandleListMonths(c *fiber.Ctx) error {
	entries, err := contentService.ListMonthsForPlan(c.Context(), c.Params("planId"))
	if err != nil {
		return serviceError(c, err)
	}
	views := make([]fiber.Map, 0, len(entries))
	for _, entry := range entries {
		views = append(views, scheduleView(entry))
	}
	return c.JSON(fiber.Map{"months": views})
}

func contentInput(req contentRequest) contentschedule.ContentInput {
	return contentschedule.ContentInput{
		Slug:         req.Slug,
		Locale:       req.Locale,
		Title:        req.Title,
		Type:         req.Type,
		PlanID:       req.PlanID,
		ObjectKey:    req.ObjectKey,
		ThumbnailKey: req.ThumbnailKey,
		DisplayOrder: req.DisplayOrder,
	}
}

func contentView(item models.ContentItem) fiber.Map {
	return fiber.Map{
		"slug":          item.Slug,
		"locale":        item.Locale,
		"title":         item.Title,
		"type":          item.Type,
		"plan_id":       item.PlanID,
		"display_order": item.DisplayOrder,
	}
}

func contentViews(items []models.ContentItem) []fiber.Map {
	views := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		views = append(views, contentView(item))
	}
	return views
}

func scheduleView(entry models.MonthlyScheduleEntry) fiber.Map {
	return fiber.Map{
		"plan_id":      entry.PlanID,
		"year":         entry.Year,
		"month":        entry.Month,
		"contents":     []string(entry.ContentRefs),
		"is_published": entry.IsPublished,
		"published_at": formatTimePtr(entry.PublishedAt),
	}
}
