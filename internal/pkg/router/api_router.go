package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ashram-web/satsang-server/app/controllers"
	"github.com/ashram-web/satsang-server/internal/pkg/middleware"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Use(middleware.UserContextMiddleware)

	api := app.Group("/api/v1", limiter.New())

	// Public
	api.Get("/plans", controllers.HandleListPlans)
	api.Get("/plans/:id", controllers.HandleGetPlan)
	api.Get("/content/free", controllers.HandleFreeContent)

	// Authenticated users (identity injected by the auth gateway)
	user := api.Group("/me", middleware.RequireUser)
	user.Get("/subscription", controllers.HandleMySubscription)
	user.Get("/subscriptions", controllers.HandleMySubscriptionHistory)
	user.Get("/content", controllers.HandleMyContent)

	api.Post("/subscriptions", middleware.RequireUser, controllers.HandleSubscribe)
	api.Post("/subscriptions/upgrade", middleware.RequireUser, controllers.HandleUpgradeSubscription)
	api.Post("/subscriptions/:id/cancel", middleware.RequireUser, controllers.HandleCancelSubscription)
	api.Get("/content/:slug/access", controllers.HandleCheckAccess)
	api.Get("/content/:slug/download", middleware.RequireUser, controllers.HandleIssueDownload)

	// Payment collaborator webhooks
	payments := api.Group("/payments", middleware.RequirePaymentCollaborator)
	payments.Post("/confirm", controllers.HandlePaymentConfirm)
	payments.Post("/renew", controllers.HandlePaymentRenew)

	// Admin / editor console
	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Post("/plans", controllers.HandleCreatePlan)
	admin.Put("/plans/:id", controllers.HandleUpdatePlan)
	admin.Post("/plans/:id/disable", controllers.HandleDisablePlan)
	admin.Post("/content", controllers.HandleCreateContent)
	admin.Put("/content/:slug", controllers.HandleUpdateContent)
	admin.Delete("/content/:slug", controllers.HandleDeleteContent)
	admin.Get("/plans/:planId/content", controllers.HandleListContentByPlan)
	admin.Get("/plans/:planId/months", controllers.HandleListMonths)
	admin.Post("/plans/:planId/months", controllers.HandleAssignMonth)
	admin.Post("/plans/:planId/months/publish", controllers.HandlePublishMonth)
	admin.Get("/subscriptions", controllers.HandleListSubscriptions)
}
