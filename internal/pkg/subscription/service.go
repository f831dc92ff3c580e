package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/ashram-web/satsang-server/internal/pkg/plancatalog"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// monthlyCycle is the billing period length for recurring plans.
const monthlyCycle = 30 * 24 * time.Hour

const (
	activationKindActivate = "activate"
	activationKindRenew    = "renew"
)

// Service drives the subscription lifecycle: pending → active →
// {cancelled, expired}. Expiry is never written by a background job; it is
// derived at read time via UserSubscription.EffectiveStatus.
type Service struct {
	repo Repository
}

// NewService creates a lifecycle service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a lifecycle service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Create opens a pending subscription for the user and snapshots the
// payment-method routing so the payment collaborator knows which flow to run.
func (s *Service) Create(ctx context.Context, userID uint, planID string) (*models.UserSubscription, error) {
	_ = ctx
	if userID == 0 || strings.TrimSpace(planID) == "" {
		return nil, fmt.Errorf("%w: user and plan are required", ErrInvalidPlan)
	}

	plan, err := s.repo.GetPlan(strings.TrimSpace(planID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidPlan
	}
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrInvalidPlan
	}

	now := time.Now()
	existing, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].IsEffectivelyActive(now) {
			return nil, ErrDuplicateActiveSubscription
		}
	}

	method := plancatalog.PaymentMethodForPrice(plan.Price)
	sub := &models.UserSubscription{
		PublicID:      uuid.NewString(),
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        models.SubscriptionStatusPending,
		PaymentMethod: method,
		AutoRenew:     method == models.PaymentMethodAutopay,
	}
	if err := s.repo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Activate flips a pending subscription to active once the payment
// collaborator confirms funds. Idempotent per payment reference: a webhook
// replay with the same reference returns the already-active record
// unchanged, a second reference on the same record is rejected.
func (s *Service) Activate(ctx context.Context, publicID, paymentRef string) (*models.UserSubscription, error) {
	_ = ctx
	ref := strings.TrimSpace(paymentRef)
	if ref == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrInvalidState)
	}

	sub, err := s.get(publicID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	switch sub.EffectiveStatus(now) {
	case models.SubscriptionStatusActive:
		if sub.PaymentReference == ref {
			return sub, nil
		}
		return nil, ErrInvalidState
	case models.SubscriptionStatusPending:
		// proceed
	default:
		return nil, ErrInvalidState
	}

	plan, err := s.repo.GetPlan(sub.PlanID)
	if err != nil {
		return nil, err
	}
	end := periodEnd(plan, now)

	// Conditional write keyed on (subscription, payment reference): the
	// unique activation event plus the status-guarded update make retried
	// and concurrent webhook deliveries converge on one activation.
	if _, err := s.repo.CreateActivationIfNotExists(&models.SubscriptionActivation{
		SubscriptionID:   sub.ID,
		PaymentReference: ref,
		Kind:             activationKindActivate,
		PeriodEnd:        end,
	}); err != nil {
		return nil, err
	}
	if _, err := s.repo.ActivateGuarded(sub.ID, ref, now, end); err != nil {
		return nil, err
	}

	cur, err := s.get(publicID)
	if err != nil {
		return nil, err
	}
	if cur.EffectiveStatus(now) == models.SubscriptionStatusActive && cur.PaymentReference == ref {
		log.Infof("[Subscription] %s active for user %d (plan %s, ref %s)", cur.PublicID, cur.UserID, cur.PlanID, ref)
		return cur, nil
	}
	return nil, ErrInvalidState
}

// Renew extends a still-active subscription by one billing cycle. A lapsed
// subscription is not renewable; the user must subscribe again. Idempotent
// per payment reference so a replayed confirmation never double-extends.
func (s *Service) Renew(ctx context.Context, publicID, paymentRef string) (*models.UserSubscription, error) {
	_ = ctx
	ref := strings.TrimSpace(paymentRef)
	if ref == "" {
		return nil, fmt.Errorf("%w: payment reference is required", ErrNotRenewable)
	}

	sub, err := s.get(publicID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sub.EffectiveStatus(now) != models.SubscriptionStatusActive {
		return nil, ErrNotRenewable
	}
	if sub.EndDate == nil {
		// Non-expiring record, nothing to extend.
		return nil, ErrNotRenewable
	}

	newEnd := sub.EndDate.Add(monthlyCycle)
	created, err := s.repo.CreateActivationIfNotExists(&models.SubscriptionActivation{
		SubscriptionID:   sub.ID,
		PaymentReference: ref,
		Kind:             activationKindRenew,
		PeriodEnd:        &newEnd,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		// Replayed confirmation: the reference was already applied.
		return sub, nil
	}
	if _, err := s.repo.ExtendGuarded(sub.ID, ref, newEnd); err != nil {
		return nil, err
	}
	log.Infof("[Subscription] %s renewed for user %d until %s", sub.PublicID, sub.UserID, newEnd.Format(time.RFC3339))
	return s.get(publicID)
}

// Cancel terminates an active subscription. Cancelled is terminal; there is
// no path back except a brand-new subscription.
func (s *Service) Cancel(ctx context.Context, publicID, reason string) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.get(publicID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sub.EffectiveStatus(now) != models.SubscriptionStatusActive {
		return nil, ErrInvalidState
	}

	sub.Status = models.SubscriptionStatusCancelled
	sub.CancelReason = strings.TrimSpace(reason)
	sub.AutoRenew = false
	if err := s.repo.Save(sub); err != nil {
		return nil, err
	}
	log.Infof("[Subscription] %s cancelled for user %d", sub.PublicID, sub.UserID)
	return sub, nil
}

// Upgrade atomically closes the user's active subscription and opens a
// pending one on the new plan, so there is no window with two active records
// and no separate cancel-then-subscribe dance for the caller.
func (s *Service) Upgrade(ctx context.Context, userID uint, newPlanID string) (*models.UserSubscription, error) {
	_ = ctx
	plan, err := s.repo.GetPlan(strings.TrimSpace(newPlanID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidPlan
	}
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrInvalidPlan
	}

	now := time.Now()
	current, err := s.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	if current.PlanID == plan.ID {
		return nil, ErrInvalidState
	}

	method := plancatalog.PaymentMethodForPrice(plan.Price)
	next := &models.UserSubscription{
		PublicID:      uuid.NewString(),
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        models.SubscriptionStatusPending,
		PaymentMethod: method,
		AutoRenew:     method == models.PaymentMethodAutopay,
	}

	err = s.repo.Transaction(func(tx Repository) error {
		cur, err := tx.GetByPublicID(current.PublicID)
		if err != nil {
			return err
		}
		if cur.EffectiveStatus(now) != models.SubscriptionStatusActive {
			return ErrInvalidState
		}
		cur.Status = models.SubscriptionStatusCancelled
		cur.CancelReason = "upgraded to " + plan.ID
		cur.AutoRenew = false
		if err := tx.Save(cur); err != nil {
			return err
		}
		return tx.Create(next)
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Get loads one subscription by its public identifier.
func (s *Service) Get(ctx context.Context, publicID string) (*models.UserSubscription, error) {
	_ = ctx
	return s.get(publicID)
}

// ActiveForUser returns the user's effectively-active subscription, or nil
// when the user holds none.
func (s *Service) ActiveForUser(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	_ = ctx
	subs, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range subs {
		if subs[i].IsEffectivelyActive(now) {
			return &subs[i], nil
		}
	}
	return nil, nil
}

// ListForUser returns the user's full subscription history, newest first,
// with statuses derived at read time.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.UserSubscription, error) {
	_ = ctx
	subs, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range subs {
		subs[i].Status = subs[i].EffectiveStatus(now)
	}
	return subs, nil
}

func (s *Service) get(publicID string) (*models.UserSubscription, error) {
	sub, err := s.repo.GetByPublicID(strings.TrimSpace(publicID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// periodEnd computes when a freshly-activated period ends. One-time plans
// never expire.
func periodEnd(plan *models.Plan, start time.Time) *time.Time {
	if plan.BillingCycle == models.BillingCycleOneTime {
		return nil
	}
	end := start.Add(monthlyCycle)
	return &end
}
