package models

import "time"

// SubscriptionActivation records one applied payment reference per
// subscription. The unique (subscription_id, payment_reference) pair is the
// conditional-write key that makes webhook replays converge on a single
// activation instead of double-extending a billing period.
type SubscriptionActivation struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SubscriptionID   uint      `gorm:"not null;index:ux_subscription_activations_ref,unique,priority:1" json:"subscription_id"`
	PaymentReference string    `gorm:"type:varchar(191);not null;index:ux_subscription_activations_ref,unique,priority:2" json:"payment_reference"`
	Kind             string    `gorm:"type:varchar(16);not null" json:"kind"` // activate, renew
	PeriodEnd        *time.Time `gorm:"type:datetime" json:"period_end,omitempty"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
