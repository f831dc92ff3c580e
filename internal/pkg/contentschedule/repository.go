package contentschedule

import (
	"github.com/ashram-web/satsang-server/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the content catalog service.
type Repository interface {
	GetPlan(id string) (*models.Plan, error)
	GetContent(slug, locale string) (*models.ContentItem, error)
	ListContentByPlan(planID, contentType, locale string) ([]models.ContentItem, error)
	CreateContent(item *models.ContentItem) error
	SaveContent(item *models.ContentItem) error
	DeleteContentBySlug(slug string) error
	CountContentBySlugs(slugs []string) (int64, error)
	GetEntry(planID string, year, month int) (*models.MonthlyScheduleEntry, error)
	ListEntriesForPlan(planID string) ([]models.MonthlyScheduleEntry, error)
	ListEntriesReferencing(slug string) ([]models.MonthlyScheduleEntry, error)
	CreateEntry(entry *models.MonthlyScheduleEntry) error
	SaveEntry(entry *models.MonthlyScheduleEntry) error
	// Transaction runs fn against a transactional repository.
	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a content catalog repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetPlan(id string) (*models.Plan, error) {
	return models.FindPlanByID(r.db, id)
}

func (r *gormRepository) GetContent(slug, locale string) (*models.ContentItem, error) {
	return models.FindContentBySlug(r.db, slug, locale)
}

func (r *gormRepository) ListContentByPlan(planID, contentType, locale string) ([]models.ContentItem, error) {
	var items []models.ContentItem
	q := r.db.Where("plan_id = ?", planID).Order("display_order ASC, id ASC")
	if contentType != "" {
		q = q.Where("type = ?", contentType)
	}
	if locale != "" {
		q = q.Where("locale = ?", locale)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *gormRepository) CreateContent(item *models.ContentItem) error {
	return r.db.Create(item).Error
}

func (r *gormRepository) SaveContent(item *models.ContentItem) error {
	return r.db.Save(item).Error
}

func (r *gormRepository) DeleteContentBySlug(slug string) error {
	return r.db.Where("slug = ?", slug).Delete(&models.ContentItem{}).Error
}

func (r *gormRepository) CountContentBySlugs(slugs []string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ContentItem{}).
		Distinct("slug").
		Where("slug IN ?", slugs).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) GetEntry(planID string, year, month int) (*models.MonthlyScheduleEntry, error) {
	var entry models.MonthlyScheduleEntry
	err := r.db.Where("plan_id = ? AND year = ? AND month = ?", planID, year, month).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *gormRepository) ListEntriesForPlan(planID string) ([]models.MonthlyScheduleEntry, error) {
	var entries []models.MonthlyScheduleEntry
	err := r.db.Where("plan_id = ?", planID).Order("year ASC, month ASC").Find(&entries).Error
	return entries, err
}

func (r *gormRepository) ListEntriesReferencing(slug string) ([]models.MonthlyScheduleEntry, error) {
	var entries []models.MonthlyScheduleEntry
	// ContentRefs is stored as a JSON array of strings, so a quoted LIKE
	// match finds exact slug references on both MySQL and SQLite.
	err := r.db.Where("content_refs LIKE ?", "%\""+slug+"\"%").Find(&entries).Error
	return entries, err
}

func (r *gormRepository) CreateEntry(entry *models.MonthlyScheduleEntry) error {
	return r.db.Create(entry).Error
}

func (r *gormRepository) SaveEntry(entry *models.MonthlyScheduleEntry) error {
	return r.db.Save(entry).Error
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
