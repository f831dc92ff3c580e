package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		sub  UserSubscription
		want string
	}{
		{
			name: "pending stays pending",
			sub:  UserSubscription{Status: SubscriptionStatusPending},
			want: SubscriptionStatusPending,
		},
		{
			name: "active with future end date stays active",
			sub:  UserSubscription{Status: SubscriptionStatusActive, EndDate: &future},
			want: SubscriptionStatusActive,
		},
		{
			name: "active past end date reads as expired",
			sub:  UserSubscription{Status: SubscriptionStatusActive, EndDate: &past},
			want: SubscriptionStatusExpired,
		},
		{
			name: "active without end date never expires",
			sub:  UserSubscription{Status: SubscriptionStatusActive},
			want: SubscriptionStatusActive,
		},
		{
			name: "cancelled past end date stays cancelled",
			sub:  UserSubscription{Status: SubscriptionStatusCancelled, EndDate: &past},
			want: SubscriptionStatusCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.EffectiveStatus(now))
		})
	}
}

func TestIsEffectivelyActive(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&UserSubscription{Status: SubscriptionStatusActive, EndDate: &future}).IsEffectivelyActive(now))
	assert.True(t, (&UserSubscription{Status: SubscriptionStatusActive}).IsEffectivelyActive(now))
	assert.False(t, (&UserSubscription{Status: SubscriptionStatusActive, EndDate: &past}).IsEffectivelyActive(now))
	assert.False(t, (&UserSubscription{Status: SubscriptionStatusPending}).IsEffectivelyActive(now))
	assert.False(t, (&UserSubscription{Status: SubscriptionStatusCancelled}).IsEffectivelyActive(now))
}
