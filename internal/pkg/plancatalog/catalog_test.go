package plancatalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/testutil"
)

func TestCreatePlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, PlanInput{
		ID:           "seva-basic",
		Name:         "Seva Basic",
		TierRank:     1,
		Price:        300,
		BillingCycle: models.BillingCycleMonthly,
		BhajanQuota:  4,
		MantraQuota:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, "seva-basic", plan.ID)
	assert.True(t, plan.IsActive)
	assert.False(t, plan.IsFree())

	loaded, err := svc.GetPlan(ctx, "seva-basic")
	require.NoError(t, err)
	assert.Equal(t, int64(300), loaded.Price)
	assert.Equal(t, 4, loaded.BhajanQuota)
}

func TestCreatePlanDefaultsBillingCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)

	plan, err := svc.CreatePlan(context.Background(), PlanInput{
		ID:       "free",
		Name:     "Free Darshan",
		TierRank: 0,
		Price:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillingCycleMonthly, plan.BillingCycle)
	assert.True(t, plan.IsFree())
}

func TestCreatePlanValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, PlanInput{Name: "No ID", TierRank: 1, Price: 100})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = svc.CreatePlan(ctx, PlanInput{ID: "neg", Name: "Negative", TierRank: 1, Price: -5})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = svc.CreatePlan(ctx, PlanInput{ID: "weekly", Name: "Weekly", TierRank: 1, Price: 100, BillingCycle: "weekly"})
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestCreatePlanRejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, PlanInput{ID: "seva-basic", Name: "Seva Basic", TierRank: 1, Price: 300})
	require.NoError(t, err)

	_, err = svc.CreatePlan(ctx, PlanInput{ID: "seva-basic", Name: "Again", TierRank: 2, Price: 400})
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = svc.CreatePlan(ctx, PlanInput{ID: "seva-other", Name: "Other", TierRank: 1, Price: 400})
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestCreatePlanEnforcesTierOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, PlanInput{ID: "seva-basic", Name: "Seva Basic", TierRank: 1, Price: 300})
	require.NoError(t, err)

	// Pricier than basic but ranked below it.
	_, err = svc.CreatePlan(ctx, PlanInput{ID: "seva-cheap-high", Name: "Wrong Order", TierRank: 0, Price: 900})
	assert.ErrorIs(t, err, ErrTierOrder)

	// Cheaper than basic but ranked above it.
	_, err = svc.CreatePlan(ctx, PlanInput{ID: "seva-dear-low", Name: "Wrong Order Too", TierRank: 2, Price: 100})
	assert.ErrorIs(t, err, ErrTierOrder)

	// Consistent ordering passes.
	_, err = svc.CreatePlan(ctx, PlanInput{ID: "seva-premium", Name: "Seva Premium", TierRank: 2, Price: 900})
	assert.NoError(t, err)
}

func TestUpdatePlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, PlanInput{ID: "seva-basic", Name: "Seva Basic", TierRank: 1, Price: 300})
	require.NoError(t, err)

	updated, err := svc.UpdatePlan(ctx, "seva-basic", PlanInput{
		Name:         "Seva Basic Plus",
		TierRank:     1,
		Price:        350,
		BillingCycle: models.BillingCycleMonthly,
		BhajanQuota:  6,
	})
	require.NoError(t, err)
	assert.Equal(t, "Seva Basic Plus", updated.Name)
	assert.Equal(t, int64(350), updated.Price)
	assert.Equal(t, 6, updated.BhajanQuota)

	_, err = svc.UpdatePlan(ctx, "missing", PlanInput{Name: "Nope", TierRank: 3, Price: 100})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestDisablePlan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := NewServiceFromDB(db)
	ctx := context.Background()

	_, err := svc.CreatePlan(ctx, PlanInput{ID: "seva-basic", Name: "Seva Basic", TierRank: 1, Price: 300})
	require.NoError(t, err)

	plan, err := svc.DisablePlan(ctx, "seva-basic")
	require.NoError(t, err)
	assert.False(t, plan.IsActive)

	// Idempotent.
	plan, err = svc.DisablePlan(ctx, "seva-basic")
	require.NoError(t, err)
	assert.False(t, plan.IsActive)

	// Disabled plans stay readable but drop out of the active listing.
	loaded, err := svc.GetPlan(ctx, "seva-basic")
	require.NoError(t, err)
	assert.False(t, loaded.IsActive)

	active, err := svc.ListPlans(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListPlans(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
