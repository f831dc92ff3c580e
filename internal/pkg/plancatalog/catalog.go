package plancatalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashram-web/satsang-server/app/models"
	"gorm.io/gorm"
)

var (
	// ErrPlanNotFound is returned when a plan ID resolves to nothing.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrInvalidPlan is returned for validation failures on create/update.
	ErrInvalidPlan = errors.New("invalid plan definition")
	// ErrTierOrder is returned when a plan's tier rank contradicts the price
	// ordering of the catalog (a pricier plan may never rank below a cheaper
	// one, so tier comparisons stay meaningful).
	ErrTierOrder = errors.New("tier rank conflicts with price ordering")
)

// Service manages the plan catalog. Plans are read by every entitlement
// check and written only by administrators.
type Service struct {
	repo Repository
}

// NewService creates a plan catalog service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a plan catalog service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetPlan loads one plan by ID, disabled plans included.
func (s *Service) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	_ = ctx
	plan, err := s.repo.GetPlan(strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns the catalog ordered for display.
func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	_ = ctx
	return s.repo.ListPlans(activeOnly)
}

// PlanInput carries administrator-supplied plan fields.
type PlanInput struct {
	ID               string
	Name             string
	TierRank         int
	Price            int64
	BillingCycle     string
	BhajanQuota      int
	MantraQuota      int
	EbookQuota       int
	VideoQuota       int
	GuidanceSessions int
	DisplayOrder     int
}

// CreatePlan validates and stores a new plan definition.
func (s *Service) CreatePlan(ctx context.Context, in PlanInput) (*models.Plan, error) {
	_ = ctx
	plan := &models.Plan{
		ID:               strings.TrimSpace(in.ID),
		Name:             strings.TrimSpace(in.Name),
		TierRank:         in.TierRank,
		Price:            in.Price,
		BillingCycle:     normalizeBillingCycle(in.BillingCycle),
		BhajanQuota:      in.BhajanQuota,
		MantraQuota:      in.MantraQuota,
		EbookQuota:       in.EbookQuota,
		VideoQuota:       in.VideoQuota,
		GuidanceSessions: in.GuidanceSessions,
		DisplayOrder:     in.DisplayOrder,
		IsActive:         true,
	}

	if err := s.validate(plan, ""); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdatePlan applies administrator edits. Edits never retroactively change
// already-granted entitlements: subscriptions reference plans by ID and
// entitlements are derived at check time.
func (s *Service) UpdatePlan(ctx context.Context, id string, in PlanInput) (*models.Plan, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.Name = strings.TrimSpace(in.Name)
	plan.TierRank = in.TierRank
	plan.Price = in.Price
	plan.BillingCycle = normalizeBillingCycle(in.BillingCycle)
	plan.BhajanQuota = in.BhajanQuota
	plan.MantraQuota = in.MantraQuota
	plan.EbookQuota = in.EbookQuota
	plan.VideoQuota = in.VideoQuota
	plan.GuidanceSessions = in.GuidanceSessions
	plan.DisplayOrder = in.DisplayOrder

	if err := s.validate(plan, plan.ID); err != nil {
		return nil, err
	}
	if err := s.repo.SavePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DisablePlan soft-disables a plan. Existing subscriptions keep their
// entitlements; new subscriptions to the plan are rejected.
func (s *Service) DisablePlan(ctx context.Context, id string) (*models.Plan, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return plan, nil
	}
	plan.IsActive = false
	if err := s.repo.SavePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// validate enforces the catalog invariants. skipID excludes the plan being
// edited from the cross-plan checks.
func (s *Service) validate(plan *models.Plan, skipID string) error {
	if plan.ID == "" || plan.Name == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidPlan)
	}
	if plan.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidPlan)
	}
	if plan.BillingCycle != models.BillingCycleMonthly && plan.BillingCycle != models.BillingCycleOneTime {
		return fmt.Errorf("%w: unknown billing cycle %q", ErrInvalidPlan, plan.BillingCycle)
	}

	existing, err := s.repo.ListPlans(false)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if skipID != "" && other.ID == skipID {
			continue
		}
		if other.ID == plan.ID {
			return fmt.Errorf("%w: plan %q already exists", ErrInvalidPlan, plan.ID)
		}
		if other.TierRank == plan.TierRank {
			return fmt.Errorf("%w: tier rank %d already used by %q", ErrInvalidPlan, plan.TierRank, other.ID)
		}
		// Higher price must imply higher rank and vice versa.
		if (plan.Price > other.Price && plan.TierRank < other.TierRank) ||
			(plan.Price < other.Price && plan.TierRank > other.TierRank) {
			return fmt.Errorf("%w: plan %q (price %d, rank %d) vs %q (price %d, rank %d)",
				ErrTierOrder, plan.ID, plan.Price, plan.TierRank, other.ID, other.Price, other.TierRank)
		}
	}
	return nil
}

func normalizeBillingCycle(cycle string) string {
	c := strings.ToLower(strings.TrimSpace(cycle))
	if c == "" {
		return models.BillingCycleMonthly
	}
	return c
}
