package subscription

import "errors"

var (
	// ErrNotFound is returned when a subscription ID resolves to nothing.
	ErrNotFound = errors.New("subscription not found")
	// ErrInvalidPlan is returned when subscribing to an unknown or disabled plan.
	ErrInvalidPlan = errors.New("plan unknown or disabled")
	// ErrDuplicateActiveSubscription enforces the one-active-subscription policy.
	ErrDuplicateActiveSubscription = errors.New("user already holds an active subscription")
	// ErrInvalidState is returned when an operation is illegal for the
	// record's current lifecycle state, including activation with a payment
	// reference that differs from the one already applied.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrNotRenewable is returned when renewing anything but a still-active
	// subscription. A lapsed subscription needs a brand-new record.
	ErrNotRenewable = errors.New("subscription is not renewable")
)
