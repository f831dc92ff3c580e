package entitlements

// Reason explains an access decision. The set of values is part of the
// caller-facing contract: surfaces render "not yet released" and "requires
// upgrade" differently, so reasons travel verbatim through the stack.
type Reason string

const (
	ReasonFreeTier             Reason = "FREE_TIER"
	ReasonEntitled             Reason = "ENTITLED"
	ReasonNoActiveSubscription Reason = "NO_ACTIVE_SUBSCRIPTION"
	ReasonNotYetReleased       Reason = "NOT_YET_RELEASED"
	ReasonPlanMismatch         Reason = "PLAN_MISMATCH"
	ReasonNotFound             Reason = "NOT_FOUND"
)

// AccessDecision is the result of one point-in-time entitlement check. It is
// computed per request and never persisted.
type AccessDecision struct {
	Accessible bool   `json:"is_accessible"`
	Reason     Reason `json:"reason"`
}

func allow(reason Reason) AccessDecision {
	return AccessDecision{Accessible: true, Reason: reason}
}

func deny(reason Reason) AccessDecision {
	return AccessDecision{Accessible: false, Reason: reason}
}
