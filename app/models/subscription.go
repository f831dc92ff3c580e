package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubscriptionStatusPending   = "pending"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// UserSubscription tracks one subscription record over its whole life.
// Records are never hard-deleted; cancelled and expired rows remain as
// renewal/audit history.
type UserSubscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	PublicID         string     `gorm:"type:char(36);uniqueIndex;not null" json:"public_id"`
	UserID           uint       `gorm:"not null;index:idx_user_subscriptions_user_status,priority:1" json:"user_id"`
	PlanID           string     `gorm:"type:varchar(50);not null;index" json:"plan_id"`
	Plan             Plan       `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status           string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_user_subscriptions_user_status,priority:2" json:"status"`
	StartDate        *time.Time `gorm:"type:datetime" json:"start_date,omitempty"`
	EndDate          *time.Time `gorm:"type:datetime" json:"end_date,omitempty"` // nil = non-expiring
	AutoRenew        bool       `gorm:"default:false" json:"auto_renew"`
	PaymentMethod    string     `gorm:"type:varchar(16);not null;default:'none'" json:"payment_method"`
	PaymentReference string     `gorm:"type:varchar(191);default:''" json:"payment_reference"`
	CancelReason     string     `gorm:"type:varchar(255);default:''" json:"cancel_reason,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// EffectiveStatus derives the status at a point in time. A stored "active"
// past its end date reads as expired; there is no background sweeper, so
// every component must go through this instead of reading Status directly.
func (s *UserSubscription) EffectiveStatus(now time.Time) string {
	if s.Status == SubscriptionStatusActive && s.EndDate != nil && now.After(*s.EndDate) {
		return SubscriptionStatusExpired
	}
	return s.Status
}

// IsEffectivelyActive reports whether the subscription grants entitlements
// at the given instant.
func (s *UserSubscription) IsEffectivelyActive(now time.Time) bool {
	return s.EffectiveStatus(now) == SubscriptionStatusActive
}

// FindSubscriptionByPublicID loads a subscription by its external identifier.
func FindSubscriptionByPublicID(db *gorm.DB, publicID string) (*UserSubscription, error) {
	var sub UserSubscription
	if err := db.Where("public_id = ?", publicID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
