package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ashram-web/satsang-server/app/models"
)

// TestPlan creates a plan fixture. Defaults describe a paid monthly plan;
// override via option funcs.
func TestPlan(t *testing.T, db *gorm.DB, opts ...func(*models.Plan)) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		ID:           fmt.Sprintf("plan-%d", time.Now().UnixNano()),
		Name:         "Test Plan",
		TierRank:     1,
		Price:        300,
		BillingCycle: models.BillingCycleMonthly,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(plan)
	}
	// Capture the flag before Create: GORM backfills zero-value fields that
	// carry a default tag, so the struct reads true again after the insert.
	inactive := !plan.IsActive
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}
	// GORM skips zero-value fields with a default tag, so a disabled fixture
	// needs an explicit column update.
	if inactive {
		if err := db.Model(plan).Update("is_active", false).Error; err != nil {
			t.Fatalf("Failed to disable test plan: %v", err)
		}
		plan.IsActive = false
	}
	return plan
}

// WithPlanID overrides the plan's identifier.
func WithPlanID(id string) func(*models.Plan) {
	return func(p *models.Plan) { p.ID = id }
}

// WithPrice overrides the plan price (paise).
func WithPrice(price int64) func(*models.Plan) {
	return func(p *models.Plan) { p.Price = price }
}

// WithTierRank overrides the plan tier rank.
func WithTierRank(rank int) func(*models.Plan) {
	return func(p *models.Plan) { p.TierRank = rank }
}

// WithBillingCycle overrides the billing cycle.
func WithBillingCycle(cycle string) func(*models.Plan) {
	return func(p *models.Plan) { p.BillingCycle = cycle }
}

// WithInactive marks the plan as soft-disabled.
func WithInactive() func(*models.Plan) {
	return func(p *models.Plan) { p.IsActive = false }
}

// TestContent creates a content item fixture bound to the given plan.
func TestContent(t *testing.T, db *gorm.DB, planID string, opts ...func(*models.ContentItem)) *models.ContentItem {
	t.Helper()

	item := &models.ContentItem{
		Slug:      fmt.Sprintf("content-%d", time.Now().UnixNano()),
		Locale:    "hi",
		Title:     "Test Content",
		Type:      models.ContentTypeBhajan,
		PlanID:    planID,
		ObjectKey: "audio/test.mp3",
	}
	for _, opt := range opts {
		opt(item)
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create test content: %v", err)
	}
	return item
}

// WithSlug overrides the content slug.
func WithSlug(slug string) func(*models.ContentItem) {
	return func(c *models.ContentItem) { c.Slug = slug }
}

// WithLocale overrides the content locale.
func WithLocale(locale string) func(*models.ContentItem) {
	return func(c *models.ContentItem) { c.Locale = locale }
}

// WithContentType overrides the content category.
func WithContentType(contentType string) func(*models.ContentItem) {
	return func(c *models.ContentItem) { c.Type = contentType }
}
