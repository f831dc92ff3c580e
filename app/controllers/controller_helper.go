package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ashram-web/satsang-server/internal/pkg/contentschedule"
	"github.com/ashram-web/satsang-server/internal/pkg/download"
	"github.com/ashram-web/satsang-server/internal/pkg/entitlements"
	"github.com/ashram-web/satsang-server/internal/pkg/plancatalog"
	"github.com/ashram-web/satsang-server/internal/pkg/subscription"
)

var validate = validator.New()

var (
	planService     *plancatalog.Service
	subService      *subscription.Service
	contentService  *contentschedule.Service
	accessResolver  *entitlements.Resolver
	downloadIssuer  *download.Issuer
	contentReadback entitlements.Store
)

// InitializeControllers wires the engine services for the HTTP layer. The
// signer may be nil when object storage is not configured; download issuance
// then responds 503 instead of panicking at startup.
func InitializeControllers(db *gorm.DB, signer download.Signer) {
	planService = plancatalog.NewServiceFromDB(db)
	subService = subscription.NewServiceFromDB(db)
	contentService = contentschedule.NewServiceFromDB(db)
	contentReadback = entitlements.NewStore(db)
	accessResolver = entitlements.NewResolver(contentReadback)
	if signer != nil {
		downloadIssuer = download.NewIssuer(accessResolver, contentReadback, signer)
	}
}

// serviceError maps engine errors to JSON responses. Denials never travel
// through here; they are regular responses with a reason code.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, subscription.ErrNotFound),
		errors.Is(err, plancatalog.ErrPlanNotFound),
		errors.Is(err, contentschedule.ErrContentNotFound),
		errors.Is(err, contentschedule.ErrScheduleNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, subscription.ErrDuplicateActiveSubscription),
		errors.Is(err, subscription.ErrInvalidState),
		errors.Is(err, subscription.ErrNotRenewable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	case errors.Is(err, subscription.ErrInvalidPlan),
		errors.Is(err, plancatalog.ErrInvalidPlan),
		errors.Is(err, plancatalog.ErrTierOrder),
		errors.Is(err, contentschedule.ErrInvalidContent),
		errors.Is(err, contentschedule.ErrInvalidSchedule):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal", "message": "internal server error"})
	}
}

// parseAndValidate binds the JSON body into out and runs struct validation.
func parseAndValidate(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return err
	}
	return validate.Struct(out)
}
