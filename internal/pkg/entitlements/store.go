package entitlements

import (
	"github.com/ashram-web/satsang-server/app/models"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates the resolver's read surface backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetContent(slug, locale string) (*models.ContentItem, error) {
	return models.FindContentBySlug(s.db, slug, locale)
}

func (s *gormStore) GetPlan(id string) (*models.Plan, error) {
	return models.FindPlanByID(s.db, id)
}

func (s *gormStore) ListPlans() ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Order("display_order ASC, tier_rank ASC").Find(&plans).Error
	return plans, err
}

func (s *gormStore) ListSubscriptionsForUser(userID uint) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

func (s *gormStore) ListEntriesForPlan(planID string) ([]models.MonthlyScheduleEntry, error) {
	var entries []models.MonthlyScheduleEntry
	err := s.db.Where("plan_id = ?", planID).Order("year ASC, month ASC").Find(&entries).Error
	return entries, err
}

func (s *gormStore) ListContentByPlan(planID, locale string) ([]models.ContentItem, error) {
	var items []models.ContentItem
	q := s.db.Where("plan_id = ?", planID).Order("display_order ASC, id ASC")
	if locale != "" {
		q = q.Where("locale = ?", locale)
	}
	err := q.Find(&items).Error
	return items, err
}
