package contentschedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashram-web/satsang-server/app/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var (
	// ErrContentNotFound is returned when a slug/locale pair resolves to nothing.
	ErrContentNotFound = errors.New("content not found")
	// ErrScheduleNotFound is returned when a (plan, year, month) entry is absent.
	ErrScheduleNotFound = errors.New("schedule entry not found")
	// ErrInvalidContent is returned for validation failures on content writes.
	ErrInvalidContent = errors.New("invalid content item")
	// ErrInvalidSchedule is returned for validation failures on schedule
	// writes, including attempts to drop content from a published month.
	ErrInvalidSchedule = errors.New("invalid schedule assignment")
)

// Service manages gated content items and their assignment into plan
// release months. Months are offered to subscribers only once published;
// there is no unpublish operation anywhere.
type Service struct {
	repo Repository
}

// NewService creates a content catalog service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a content catalog service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetContent loads one locale variant of a content item.
func (s *Service) GetContent(ctx context.Context, slug, locale string) (*models.ContentItem, error) {
	_ = ctx
	item, err := s.repo.GetContent(strings.TrimSpace(slug), strings.TrimSpace(locale))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListContentByPlan returns a plan's content, optionally filtered by type
// and locale, in display order.
func (s *Service) ListContentByPlan(ctx context.Context, planID, contentType, locale string) ([]models.ContentItem, error) {
	_ = ctx
	if contentType != "" && !models.IsValidContentType(contentType) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidContent, contentType)
	}
	return s.repo.ListContentByPlan(strings.TrimSpace(planID), contentType, strings.TrimSpace(locale))
}

// ContentInput carries editor-supplied content fields.
type ContentInput struct {
	Slug         string
	Locale       string
	Title        string
	Type         string
	PlanID       string
	ObjectKey    string
	ThumbnailKey string
	DisplayOrder int
}

// CreateContent validates and stores a new content item.
func (s *Service) CreateContent(ctx context.Context, in ContentInput) (*models.ContentItem, error) {
	_ = ctx
	item := &models.ContentItem{
		Slug:         strings.TrimSpace(in.Slug),
		Locale:       strings.TrimSpace(in.Locale),
		Title:        strings.TrimSpace(in.Title),
		Type:         strings.ToLower(strings.TrimSpace(in.Type)),
		PlanID:       strings.TrimSpace(in.PlanID),
		ObjectKey:    strings.TrimSpace(in.ObjectKey),
		ThumbnailKey: strings.TrimSpace(in.ThumbnailKey),
		DisplayOrder: in.DisplayOrder,
	}
	if item.Locale == "" {
		item.Locale = "hi"
	}
	if err := s.validateContent(item); err != nil {
		return nil, err
	}
	if err := s.repo.CreateContent(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateContent applies editor edits to one locale variant.
func (s *Service) UpdateContent(ctx context.Context, slug, locale string, in ContentInput) (*models.ContentItem, error) {
	item, err := s.GetContent(ctx, slug, locale)
	if err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(in.Title)
	item.Type = strings.ToLower(strings.TrimSpace(in.Type))
	item.PlanID = strings.TrimSpace(in.PlanID)
	item.ObjectKey = strings.TrimSpace(in.ObjectKey)
	item.ThumbnailKey = strings.TrimSpace(in.ThumbnailKey)
	item.DisplayOrder = in.DisplayOrder

	if err := s.validateContent(item); err != nil {
		return nil, err
	}
	if err := s.repo.SaveContent(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteContent removes every locale variant of a content item and strips
// its slug from all schedule entries, in one transaction.
func (s *Service) DeleteContent(ctx context.Context, slug string) error {
	_ = ctx
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrInvalidContent)
	}

	count, err := s.repo.CountContentBySlugs([]string{slug})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrContentNotFound
	}

	return s.repo.Transaction(func(tx Repository) error {
		if err := tx.DeleteContentBySlug(slug); err != nil {
			return err
		}
		// Strip the slug from any schedule entry still referencing it.
		entries, err := tx.ListEntriesReferencing(slug)
		if err != nil {
			return err
		}
		for i := range entries {
			entry := entries[i]
			refs := make(models.StringList, 0, len(entry.ContentRefs))
			for _, ref := range entry.ContentRefs {
				if ref != slug {
					refs = append(refs, ref)
				}
			}
			entry.ContentRefs = refs
			if err := tx.SaveEntry(&entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// AssignToMonth creates or replaces the ordered content list of a plan's
// release month. A published month may gain content but never lose it.
func (s *Service) AssignToMonth(ctx context.Context, planID string, year, month int, slugs []string) (*models.MonthlyScheduleEntry, error) {
	_ = ctx
	planID = strings.TrimSpace(planID)
	if month < 1 || month > 12 || year < 2000 {
		return nil, fmt.Errorf("%w: bad release month %d-%d", ErrInvalidSchedule, year, month)
	}
	if _, err := s.repo.GetPlan(planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan %q not found", ErrInvalidSchedule, planID)
		}
		return nil, err
	}

	refs := dedupeSlugs(slugs)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: at least one content reference required", ErrInvalidSchedule)
	}
	count, err := s.repo.CountContentBySlugs(refs)
	if err != nil {
		return nil, err
	}
	if count != int64(len(refs)) {
		return nil, fmt.Errorf("%w: unknown content reference in assignment", ErrInvalidSchedule)
	}

	entry, err := s.repo.GetEntry(planID, year, month)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = &models.MonthlyScheduleEntry{
			PlanID:      planID,
			Year:        year,
			Month:       month,
			ContentRefs: models.StringList(refs),
		}
		if err := s.repo.CreateEntry(entry); err != nil {
			return nil, err
		}
		return entry, nil
	}
	if err != nil {
		return nil, err
	}

	if entry.IsPublished {
		for _, old := range entry.ContentRefs {
			if !containsSlug(refs, old) {
				return nil, fmt.Errorf("%w: cannot remove %q from a published month", ErrInvalidSchedule, old)
			}
		}
	}
	entry.ContentRefs = models.StringList(refs)
	if err := s.repo.SaveEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// PublishMonth releases a month to subscribers. One-directional and
// idempotent: once a month is published it stays published.
func (s *Service) PublishMonth(ctx context.Context, planID string, year, month int) (*models.MonthlyScheduleEntry, error) {
	_ = ctx
	entry, err := s.repo.GetEntry(strings.TrimSpace(planID), year, month)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	if entry.IsPublished {
		return entry, nil
	}

	now := time.Now()
	entry.IsPublished = true
	entry.PublishedAt = &now
	if err := s.repo.SaveEntry(entry); err != nil {
		return nil, err
	}
	log.Infof("[Schedule] published %s %04d-%02d (%d items)", entry.PlanID, entry.Year, entry.Month, len(entry.ContentRefs))
	return entry, nil
}

// ListMonthsForPlan returns a plan's schedule entries ordered by (year, month).
func (s *Service) ListMonthsForPlan(ctx context.Context, planID string) ([]models.MonthlyScheduleEntry, error) {
	_ = ctx
	return s.repo.ListEntriesForPlan(strings.TrimSpace(planID))
}

// ScheduleEntryForContent returns the schedule entry of the content's plan
// that references the slug, or nil when the content is plan-wide rather
// than month-bound.
func (s *Service) ScheduleEntryForContent(ctx context.Context, planID, slug string) (*models.MonthlyScheduleEntry, error) {
	_ = ctx
	entries, err := s.repo.ListEntriesForPlan(planID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Contains(slug) {
			return &entries[i], nil
		}
	}
	return nil, nil
}

func (s *Service) validateContent(item *models.ContentItem) error {
	if item.Slug == "" || item.Title == "" || item.ObjectKey == "" {
		return fmt.Errorf("%w: slug, title and object key are required", ErrInvalidContent)
	}
	if !models.IsValidContentType(item.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidContent, item.Type)
	}
	if _, err := s.repo.GetPlan(item.PlanID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: plan %q not found", ErrInvalidContent, item.PlanID)
		}
		return err
	}
	return nil
}

func dedupeSlugs(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, raw := range slugs {
		slug := strings.TrimSpace(raw)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

func containsSlug(slugs []string, want string) bool {
	for _, s := range slugs {
		if s == want {
			return true
		}
	}
	return false
}
