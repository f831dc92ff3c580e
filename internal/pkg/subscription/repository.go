package subscription

import (
	"time"

	"github.com/ashram-web/satsang-server/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the lifecycle service.
type Repository interface {
	GetPlan(id string) (*models.Plan, error)
	GetByPublicID(publicID string) (*models.UserSubscription, error)
	ListForUser(userID uint) ([]models.UserSubscription, error)
	Create(sub *models.UserSubscription) error
	Save(sub *models.UserSubscription) error
	// CreateActivationIfNotExists inserts the activation event unless the
	// (subscription, payment reference) pair was already applied. Returns
	// whether this call inserted the row.
	CreateActivationIfNotExists(event *models.SubscriptionActivation) (bool, error)
	// ActivateGuarded flips a pending record to active only if it is still
	// pending. Returns the number of rows changed.
	ActivateGuarded(subID uint, paymentRef string, start time.Time, end *time.Time) (int64, error)
	// ExtendGuarded pushes the end date of a still-active record. Returns
	// the number of rows changed.
	ExtendGuarded(subID uint, paymentRef string, newEnd time.Time) (int64, error)
	// Transaction runs fn against a transactional repository.
	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetPlan(id string) (*models.Plan, error) {
	return models.FindPlanByID(r.db, id)
}

func (r *gormRepository) GetByPublicID(publicID string) (*models.UserSubscription, error) {
	return models.FindSubscriptionByPublicID(r.db, publicID)
}

func (r *gormRepository) ListForUser(userID uint) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&subs).Error
	return subs, err
}

func (r *gormRepository) Create(sub *models.UserSubscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) Save(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) CreateActivationIfNotExists(event *models.SubscriptionActivation) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscription_id"},
			{Name: "payment_reference"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) ActivateGuarded(subID uint, paymentRef string, start time.Time, end *time.Time) (int64, error) {
	tx := r.db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ?", subID, models.SubscriptionStatusPending).
		Updates(map[string]interface{}{
			"status":            models.SubscriptionStatusActive,
			"payment_reference": paymentRef,
			"start_date":        start,
			"end_date":          end,
		})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) ExtendGuarded(subID uint, paymentRef string, newEnd time.Time) (int64, error) {
	tx := r.db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ?", subID, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"payment_reference": paymentRef,
			"end_date":          newEnd,
		})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
