package plancatalog

import (
	"github.com/ashram-web/satsang-server/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the plan catalog service.
type Repository interface {
	GetPlan(id string) (*models.Plan, error)
	ListPlans(activeOnly bool) ([]models.Plan, error)
	CreatePlan(plan *models.Plan) error
	SavePlan(plan *models.Plan) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a plan catalog repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetPlan(id string) (*models.Plan, error) {
	return models.FindPlanByID(r.db, id)
}

func (r *gormRepository) ListPlans(activeOnly bool) ([]models.Plan, error) {
	var plans []models.Plan
	q := r.db.Order("display_order ASC, tier_rank ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&plans).Error
	return plans, err
}

func (r *gormRepository) CreatePlan(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

func (r *gormRepository) SavePlan(plan *models.Plan) error {
	return r.db.Save(plan).Error
}
