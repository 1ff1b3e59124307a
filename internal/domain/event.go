package domain

import (
	"strings"
	"time"
)

// EventType 家族活动类型
type EventType string

const (
	EventBirthday    EventType = "birthday"
	EventAnniversary EventType = "anniversary"
	EventReunion     EventType = "reunion"
	EventHoliday     EventType = "holiday"
	EventCustom      EventType = "custom"
)

// EventStatus 活动状态（默认 upcoming）
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// ParseEventStatus 空值归为 upcoming
func ParseEventStatus(s string) EventStatus {
	switch EventStatus(strings.ToLower(strings.TrimSpace(s))) {
	case EventOngoing:
		return EventOngoing
	case EventCompleted:
		return EventCompleted
	case EventCancelled:
		return EventCancelled
	default:
		return EventUpcoming
	}
}

// FamilyEvent 家族活动（对应 family_events 表），用于时间线和统计
type FamilyEvent struct {
	ID             string      `db:"event_id" json:"id"`                       // UUID, PRIMARY KEY
	FamilyID       string      `db:"family_id" json:"familyId"`                // UUID, NOT NULL
	Title          string      `db:"title" json:"title"`                       // VARCHAR(200), NOT NULL
	Description    string      `db:"description" json:"description,omitempty"` // TEXT, nullable
	Type           EventType   `db:"event_type" json:"type"`                   // VARCHAR(20), NOT NULL
	Date           time.Time   `db:"event_date" json:"date"`                   // DATE, NOT NULL
	EndDate        *time.Time  `db:"end_date" json:"endDate,omitempty"`        // DATE, nullable
	Location       string      `db:"location" json:"location,omitempty"`       // VARCHAR(200), nullable
	RelatedPersons EdgeSet     `db:"related_persons" json:"relatedPersons"`    // TEXT[]
	CreatedBy      string      `db:"created_by" json:"createdBy,omitempty"`    // 创建者 user id
	Status         EventStatus `db:"status" json:"status"`                     // VARCHAR(20), DEFAULT 'upcoming'
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsUpcoming 状态为 upcoming 且日期不早于 now 当天
func (e *FamilyEvent) IsUpcoming(now time.Time) bool {
	if e == nil || e.Status != EventUpcoming {
		return false
	}
	y, m, d := now.UTC().Date()
	return !e.Date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Clone 深拷贝
func (e *FamilyEvent) Clone() *FamilyEvent {
	if e == nil {
		return nil
	}
	c := *e
	if e.EndDate != nil {
		t := *e.EndDate
		c.EndDate = &t
	}
	c.RelatedPersons = e.RelatedPersons.Clone()
	return &c
}
