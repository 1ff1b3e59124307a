package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/repository"

	"go.uber.org/zap"
)

// FamilyEventService 家族活动：创建 + 按年时间线
type FamilyEventService struct {
	events repository.EventsRepository
	loader *repository.FamilyMembersLoader
	logger *zap.Logger
}

func NewFamilyEventService(events repository.EventsRepository, persons repository.PersonsRepository, families repository.FamiliesRepository, logger *zap.Logger) *FamilyEventService {
	return &FamilyEventService{events: events, loader: repository.NewFamilyMembersLoader(families, persons), logger: logger}
}

// TimelineEntry 时间线条目；relatedPersons 只包含仍在家族中的成员
type TimelineEntry struct {
	*domain.FamilyEvent
	RelatedPersons []domain.PersonSummary `json:"relatedPersons"`
}

// Timeline 某一年的家族活动
type Timeline struct {
	FamilyID string          `json:"familyId"`
	Year     int             `json:"year"`
	Events   []TimelineEntry `json:"events"`
}

// CreateEvent 创建活动；relatedPersons 必须都是本家族成员
func (s *FamilyEventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*domain.FamilyEvent, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	date, _ := parseDate(req.Date)
	var endDate *time.Time
	if end, ok := parseDate(req.EndDate); ok {
		if end.Before(date) {
			return nil, domain.NewValidationError("endDate", "cannot be before date")
		}
		endDate = &end
	}

	members, err := s.loader.LoadFamilyMembers(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	inFamily := make(map[domain.PersonID]bool, len(members))
	for _, m := range members {
		inFamily[m.ID] = true
	}
	related := domain.EdgeSet{}
	for _, id := range req.RelatedPersons {
		if !inFamily[id] {
			return nil, domain.NewValidationError("relatedPersons", "person %s is not a member of this family", id)
		}
		related.Add(id)
	}

	event := &domain.FamilyEvent{
		FamilyID:       req.FamilyID,
		Title:          req.Title,
		Description:    req.Description,
		Type:           domain.EventType(req.Type),
		Date:           date,
		EndDate:        endDate,
		Location:       req.Location,
		RelatedPersons: related,
		CreatedBy:      req.ActingUserID,
		Status:         domain.ParseEventStatus(req.Status),
	}
	if _, err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("family event created",
		zap.String("family_id", event.FamilyID),
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)))
	return event, nil
}

// Timeline year 年 1 月 1 日到 12 月 31 日的活动，按日期升序
func (s *FamilyEventService) Timeline(ctx context.Context, familyID string, year int) (*Timeline, error) {
	if year < 1 || year > 9999 {
		return nil, domain.NewValidationError("year", "must be between 1 and 9999")
	}
	members, err := s.loader.LoadFamilyMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[domain.PersonID]*domain.Person, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	events, err := s.events.ListEvents(ctx, familyID, from, to)
	if err != nil {
		return nil, err
	}

	out := &Timeline{FamilyID: familyID, Year: year, Events: make([]TimelineEntry, 0, len(events))}
	for _, e := range events {
		entry := TimelineEntry{FamilyEvent: e, RelatedPersons: []domain.PersonSummary{}}
		for _, id := range e.RelatedPersons {
			if p, ok := byID[id]; ok {
				entry.RelatedPersons = append(entry.RelatedPersons, p.Summary())
			}
		}
		out.Events = append(out.Events, entry)
	}
	return out, nil
}
