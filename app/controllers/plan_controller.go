package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/cache"
	"github.com/ashram-web/satsang-server/internal/pkg/plancatalog"
)

const planListCacheKey = "plans:active"
const planListCacheTTL = 60 * time.Second

// HandleListPlans returns the active plan catalog with the payment method
// each plan routes to. Served from cache when possible; the catalog changes
// rarely and is read on every pricing page view.
func HandleListPlans(c *fiber.Ctx) error {
	if cached, err := cache.Get(planListCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	plans, err := planService.ListPlans(c.Context(), true)
	if err != nil {
		return serviceError(c, err)
	}

	payload := fiber.Map{"plans": planViews(plans)}
	if body, err := json.Marshal(payload); err == nil {
		if err := cache.Set(planListCacheKey, string(body), planListCacheTTL); err != nil {
			log.Warnf("[Plans] cache write failed: %v", err)
		}
	}
	return c.JSON(payload)
}

// HandleGetPlan returns one plan, disabled plans included (admin surfaces
// link to historical plans from subscription records).
func HandleGetPlan(c *fiber.Ctx) error {
	plan, err := planService.GetPlan(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(planView(*plan))
}

type planRequest struct {
	ID               string `json:"id" validate:"required,max=50"`
	Name             string `json:"name" validate:"required,max=100"`
	TierRank         int    `json:"tier_rank" validate:"gte=0"`
	Price            int64  `json:"price" validate:"gte=0"`
	BillingCycle     string `json:"billing_cycle" validate:"required,oneof=one_time monthly"`
	BhajanQuota      int    `json:"bhajan_quota" validate:"gte=0"`
	MantraQuota      int    `json:"mantra_quota" validate:"gte=0"`
	EbookQuota       int    `json:"ebook_quota" validate:"gte=0"`
	VideoQuota       int    `json:"video_quota" validate:"gte=0"`
	GuidanceSessions int    `json:"guidance_sessions" validate:"gte=0"`
	DisplayOrder     int    `json:"display_order"`
}

// HandleCreatePlan creates a plan definition (admin only).
func HandleCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	plan, err := planService.CreatePlan(c.Context(), planInput(req))
	if err != nil {
		return serviceError(c, err)
	}
	invalidatePlanCache()
	return c.Status(fiber.StatusCreated).JSON(planView(*plan))
}

// HandleUpdatePlan edits a plan definition (admin only). Edits never change
// entitlements already granted under the old definition.
func HandleUpdatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	plan, err := planService.UpdatePlan(c.Context(), c.Params("id"), planInput(req))
	if err != nil {
		return serviceError(c, err)
	}
	invalidatePlanCache()
	return c.JSON(planView(*plan))
}

// HandleDisablePlan soft-disables a plan (admin only); it stays readable
// for every subscription that references it.
func HandleDisablePlan(c *fiber.Ctx) error {
	plan, err := planService.DisablePlan(c.Context(), c.Params("id"))
	if err != nil {
		return serviceError(c, err)
	}
	invalidatePlanCache()
	return c.JSON(planView(*plan))
}

func planInput(req planRequest) plancatalog.PlanInput {
	return plancatalog.PlanInput{
		ID:               req.ID,
		Name:             req.Name,
		TierRank:         req.TierRank,
		Price:            req.Price,
		BillingCycle:     req.BillingCycle,
		BhajanQuota:      req.BhajanQuota,
		MantraQuota:      req.MantraQuota,
		EbookQuota:       req.EbookQuota,
		VideoQuota:       req.VideoQuota,
		GuidanceSessions: req.GuidanceSessions,
		DisplayOrder:     req.DisplayOrder,
	}
}

func planView(plan models.Plan) fiber.Map {
	return fiber.Map{
		"id":                plan.ID,
		"name":              plan.Name,
		"tier_rank":         plan.TierRank,
		"price":             plan.Price,
		"billing_cycle":     plan.BillingCycle,
		"payment_method":    plancatalog.PaymentMethodForPrice(plan.Price),
		"bhajan_quota":      plan.BhajanQuota,
		"mantra_quota":      plan.MantraQuota,
		"ebook_quota":       plan.EbookQuota,
		"video_quota":       plan.VideoQuota,
		"guidance_sessions": plan.GuidanceSessions,
		"display_order":     plan.DisplayOrder,
		"is_active":         plan.IsActive,
	}
}

func planViews(plans []models.Plan) []fiber.Map {
	views := make([]fiber.Map, 0, len(plans))
	for _, plan := range plans {
		views = append(views, planView(plan))
	}
	return views
}

func invalidatePlanCache() {
	if err := cache.Delete(planListCacheKey); err != nil {
		log.Warnf("[Plans] cache invalidation failed: %v", err)
	}
}
