package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList stores an ordered list of content slugs as a JSON column.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	return json.Unmarshal(bytes, l)
}

// MonthlyScheduleEntry binds an ordered set of content slugs to one plan's
// release month. A month that is absent or unpublished is simply not offered;
// the engine never infers "current month" from the calendar. Publishing is
// one-directional: no code path clears IsPublished.
type MonthlyScheduleEntry struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PlanID      string     `gorm:"type:varchar(50);not null;index:ux_monthly_schedule_plan_month,unique,priority:1" json:"plan_id"`
	Year        int        `gorm:"not null;index:ux_monthly_schedule_plan_month,unique,priority:2" json:"year"`
	Month       int        `gorm:"not null;index:ux_monthly_schedule_plan_month,unique,priority:3" json:"month"`
	ContentRefs StringList `gorm:"type:json" json:"content_refs"`
	IsPublished bool       `gorm:"default:false" json:"is_published"`
	PublishedAt *time.Time `gorm:"type:datetime" json:"published_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Contains reports whether the entry references the given content slug.
func (e *MonthlyScheduleEntry) Contains(slug string) bool {
	for _, ref := range e.ContentRefs {
		if ref == slug {
			return true
		}
	}
	return false
}
