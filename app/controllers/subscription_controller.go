package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/usercontext"
)

type subscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required,max=50"`
}

// HandleSubscribe opens a pending subscription. The response carries the
// payment method the external payment flow must use for this plan's price.
func HandleSubscribe(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	var req subscribeRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	sub, err := subService.Create(c.Context(), user.UserID, req.PlanID)
	if err != nil {
		return serviceError(c, err)
	}
	log.Infof("[Subscribe] user %d opened %s on plan %s", user.UserID, sub.PublicID, sub.PlanID)
	return c.Status(fiber.StatusCreated).JSON(subscriptionView(sub))
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

// HandleCancelSubscription cancels the caller's subscription.
func HandleCancelSubscription(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	publicID := c.Params("id")

	var req cancelRequest
	if len(c.Body()) > 0 {
		if err := parseAndValidate(c, &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
		}
	}

	sub, err := subService.Get(c.Context(), publicID)
	if err != nil {
		return serviceError(c, err)
	}
	if sub.UserID != user.UserID {
		// Do not leak existence
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "subscription not found"})
	}

	cancelled, err := subService.Cancel(c.Context(), publicID, req.Reason)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subscriptionView(cancelled))
}

type upgradeRequest struct {
	PlanID string `json:"plan_id" validate:"required,max=50"`
}

// HandleUpgradeSubscription atomically swaps the caller's active plan for a
// new pending subscription on the target plan.
func HandleUpgradeSubscription(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	var req upgradeRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	sub, err := subService.Upgrade(c.Context(), user.UserID, req.PlanID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(subscriptionView(sub))
}

// HandleMySubscription returns the caller's effectively-active subscription.
func HandleMySubscription(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	sub, err := subService.ActiveForUser(c.Context(), user.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	if sub == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "no active subscription"})
	}
	return c.JSON(subscriptionView(sub))
}

// HandleMySubscriptionHistory returns the caller's full subscription
// history with read-time derived statuses.
func HandleMySubscriptionHistory(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)

	subs, err := subService.ListForUser(c.Context(), user.UserID)
	if err != nil {
		return serviceError(c, err)
	}
	views := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		views = append(views, subscriptionView(&subs[i]))
	}
	return c.JSON(fiber.Map{"subscriptions": views})
}

type paymentConfirmRequest struct {
	SubscriptionID   string `json:"subscription_id" validate:"required,uuid4"`
	PaymentReference string `json:"payment_reference" validate:"required,max=191"`
}

// HandlePaymentConfirm activates a pending subscription after the payment
// collaborator confirms funds. Safe to replay: the same payment reference
// always converges on the same active record.
func HandlePaymentConfirm(c *fiber.Ctx) error {
	var req paymentConfirmRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	sub, err := subService.Activate(c.Context(), req.SubscriptionID, req.PaymentReference)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subscriptionView(sub))
}

// HandlePaymentRenew extends a still-active subscription by one cycle.
func HandlePaymentRenew(c *fiber.Ctx) error {
	var req paymentConfirmRequest
	if err := parseAndValidate(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	sub, err := subService.Renew(c.Context(), req.SubscriptionID, req.PaymentReference)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subscriptionView(sub))
}

// HandleListSubscriptions lists a user's subscription history (admin only),
// statuses derived at read time so "expired" rows show as expired without a
// background sweep.
func HandleListSubscriptions(c *fiber.Ctx) error {
	rawUserID := c.Query("user_id")
	userID, err := strconv.ParseUint(rawUserID, 10, 32)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "user_id query parameter required"})
	}

	subs, err := subService.ListForUser(c.Context(), uint(userID))
	if err != nil {
		return serviceError(c, err)
	}
	views := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		views = append(views, subscriptionView(&subs[i]))
	}
	return c.JSON(fiber.Map{"subscriptions": views})
}

func subscriptionView(sub *models.UserSubscription) fiber.Map {
	return fiber.Map{
		"id":             sub.PublicID,
		"user_id":        sub.UserID,
		"plan_id":        sub.PlanID,
		"status":         sub.EffectiveStatus(time.Now()),
		"start_date":     formatTimePtr(sub.StartDate),
		"end_date":       formatTimePtr(sub.EndDate),
		"auto_renew":     sub.AutoRenew,
		"payment_method": sub.PaymentMethod,
		"created_at":     sub.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
