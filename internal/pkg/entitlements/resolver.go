package entitlements

import (
	"context"
	"errors"
	"time"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/env"
	"gorm.io/gorm"
)

// Store is the read surface the resolver needs: point lookups and small
// range scans, nothing more.
type Store interface {
	GetContent(slug, locale string) (*models.ContentItem, error)
	GetPlan(id string) (*models.Plan, error)
	ListPlans() ([]models.Plan, error)
	ListSubscriptionsForUser(userID uint) ([]models.UserSubscription, error)
	ListEntriesForPlan(planID string) ([]models.MonthlyScheduleEntry, error)
	ListContentByPlan(planID, locale string) ([]models.ContentItem, error)
}

// Resolver answers "may this user access this content right now". It sits on
// the hot path of content listing: lookup misses degrade to a deny with
// ReasonNotFound instead of failing a batch evaluation, and only genuine
// infrastructure failures surface as errors (callers must treat those as
// retryable, never as deny).
type Resolver struct {
	store Store
	// tierSubsumption switches plan matching from exact to "subscription
	// tier rank >= content tier rank". Off by default: observed catalogs
	// list each plan's content explicitly instead of inheriting.
	tierSubsumption bool
}

// NewResolver creates a resolver with the tier-subsumption policy taken
// from the PLAN_TIER_SUBSUMPTION env toggle.
func NewResolver(store Store) *Resolver {
	return NewResolverWithPolicy(store, env.GetEnv("PLAN_TIER_SUBSUMPTION", "false") == "true")
}

// NewResolverWithPolicy creates a resolver with an explicit matching policy.
func NewResolverWithPolicy(store Store, tierSubsumption bool) *Resolver {
	return &Resolver{store: store, tierSubsumption: tierSubsumption}
}

// CheckAccess resolves whether the user may access the content at the given
// instant. Free-plan content is allowed unconditionally, before any
// subscription lookup, so unauthenticated callers (userID 0) work too.
func (r *Resolver) CheckAccess(ctx context.Context, userID uint, slug, locale string, now time.Time) (AccessDecision, error) {
	_ = ctx
	content, err := r.store.GetContent(slug, locale)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deny(ReasonNotFound), nil
	}
	if err != nil {
		return AccessDecision{}, err
	}

	contentPlan, err := r.store.GetPlan(content.PlanID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deny(ReasonNotFound), nil
	}
	if err != nil {
		return AccessDecision{}, err
	}
	if contentPlan.IsFree() {
		return allow(ReasonFreeTier), nil
	}

	sub, subPlan, err := r.activeSubscription(userID, now)
	if err != nil {
		return AccessDecision{}, err
	}
	if sub == nil {
		return deny(ReasonNoActiveSubscription), nil
	}

	entry, err := r.scheduleEntryFor(content)
	if err != nil {
		return AccessDecision{}, err
	}
	if entry != nil && !entry.IsPublished {
		// Publication gating always wins, even for a perfectly matching
		// subscription.
		return deny(ReasonNotYetReleased), nil
	}

	if !r.planMatches(subPlan, contentPlan) {
		return deny(ReasonPlanMismatch), nil
	}
	return allow(ReasonEntitled), nil
}

// UserAccessibleContent returns the union of free-plan content and the
// entitled content of the user's active plan. Recomputed on every call so
// catalog and schedule edits take effect immediately for all plan holders.
func (r *Resolver) UserAccessibleContent(ctx context.Context, userID uint, locale string, now time.Time) ([]models.ContentItem, error) {
	_ = ctx
	plans, err := r.store.ListPlans()
	if err != nil {
		return nil, err
	}

	var items []models.ContentItem
	seen := make(map[uint]struct{})
	appendItems := func(batch []models.ContentItem) {
		for _, item := range batch {
			if _, ok := seen[item.ID]; ok {
				continue
			}
			seen[item.ID] = struct{}{}
			items = append(items, item)
		}
	}

	for _, plan := range plans {
		if plan.IsFree() {
			batch, err := r.store.ListContentByPlan(plan.ID, locale)
			if err != nil {
				return nil, err
			}
			appendItems(batch)
		}
	}

	sub, subPlan, err := r.activeSubscription(userID, now)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return items, nil
	}

	for _, plan := range plans {
		if plan.IsFree() || !r.planMatches(subPlan, &plan) {
			continue
		}
		batch, err := r.store.ListContentByPlan(plan.ID, locale)
		if err != nil {
			return nil, err
		}
		entitled := make([]models.ContentItem, 0, len(batch))
		for i := range batch {
			entry, err := r.scheduleEntryFor(&batch[i])
			if err != nil {
				return nil, err
			}
			if entry != nil && !entry.IsPublished {
				continue
			}
			entitled = append(entitled, batch[i])
		}
		appendItems(entitled)
	}
	return items, nil
}

// activeSubscription picks the user's effectively-active subscription and
// its plan. Both nil when the user holds none.
func (r *Resolver) activeSubscription(userID uint, now time.Time) (*models.UserSubscription, *models.Plan, error) {
	if userID == 0 {
		return nil, nil, nil
	}
	subs, err := r.store.ListSubscriptionsForUser(userID)
	if err != nil {
		return nil, nil, err
	}
	for i := range subs {
		if !subs[i].IsEffectivelyActive(now) {
			continue
		}
		plan, err := r.store.GetPlan(subs[i].PlanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Plan row gone while the subscription survives; treat the
			// record as non-entitling rather than failing the check.
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return &subs[i], plan, nil
	}
	return nil, nil, nil
}

// scheduleEntryFor finds the release-month entry referencing the content,
// or nil for plan-wide (non-scheduled) content.
func (r *Resolver) scheduleEntryFor(content *models.ContentItem) (*models.MonthlyScheduleEntry, error) {
	entries, err := r.store.ListEntriesForPlan(content.PlanID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Contains(content.Slug) {
			return &entries[i], nil
		}
	}
	return nil, nil
}

func (r *Resolver) planMatches(subPlan, contentPlan *models.Plan) bool {
	if subPlan == nil {
		return false
	}
	if r.tierSubsumption {
		return subPlan.TierRank >= contentPlan.TierRank
	}
	return subPlan.ID == contentPlan.ID
}
