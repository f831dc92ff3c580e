package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BillingCycleOneTime = "one_time"
	BillingCycleMonthly = "monthly"
)

const (
	PaymentMethodAutopay = "autopay"
	PaymentMethodManual  = "manual"
	PaymentMethodNone    = "none"
)

// Plan defines a subscription tier: price, billing cycle, content quotas and
// guidance entitlements. Plans are soft-disabled, never deleted, because
// historical subscriptions keep referencing them.
type Plan struct {
	ID               string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(100);not null" json:"name"`
	TierRank         int       `gorm:"uniqueIndex;not null" json:"tier_rank"`
	Price            int64     `gorm:"not null" json:"price"` // paise
	BillingCycle     string    `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_cycle"`
	BhajanQuota      int       `gorm:"default:0" json:"bhajan_quota"`
	MantraQuota      int       `gorm:"default:0" json:"mantra_quota"`
	EbookQuota       int       `gorm:"default:0" json:"ebook_quota"`
	VideoQuota       int       `gorm:"default:0" json:"video_quota"`
	GuidanceSessions int       `gorm:"default:0" json:"guidance_sessions"`
	DisplayOrder     int       `gorm:"default:0" json:"display_order"`
	IsActive         bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsFree reports whether this is the zero-price plan whose content is open
// to everyone, including callers without any subscription.
func (p *Plan) IsFree() bool {
	return p.Price == 0
}

// FindPlanByID loads a plan regardless of its active flag.
func FindPlanByID(db *gorm.DB, id string) (*Plan, error) {
	var plan Plan
	if err := db.Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}
