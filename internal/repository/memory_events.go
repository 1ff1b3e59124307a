package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/google/uuid"
)

// MemoryEventsRepo 家族活动的内存实现（读写都做深拷贝）
type MemoryEventsRepo struct {
	mu     sync.RWMutex
	events map[string]*domain.FamilyEvent
}

func NewMemoryEventsRepo() *MemoryEventsRepo {
	return &MemoryEventsRepo{events: map[string]*domain.FamilyEvent{}}
}

var _ EventsRepository = (*MemoryEventsRepo)(nil)

func (r *MemoryEventsRepo) CreateEvent(_ context.Context, event *domain.FamilyEvent) (string, error) {
	if event == nil || event.FamilyID == "" {
		return "", fmt.Errorf("family_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if _, dup := r.events[event.ID]; dup {
		return "", fmt.Errorf("event %s already exists", event.ID)
	}
	now := time.Now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now
	r.events[event.ID] = event.Clone()
	return event.ID, nil
}

func (r *MemoryEventsRepo) ListEvents(_ context.Context, familyID string, from, to time.Time) ([]*domain.FamilyEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.FamilyEvent{}
	for _, e := range r.events {
		if e.FamilyID != familyID || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryEventsRepo) CountUpcoming(_ context.Context, familyID string, now time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.events {
		if e.FamilyID == familyID && e.IsUpcoming(now) {
			n++
		}
	}
	return n, nil
}
