package memory

import (
	"context"
	"sort"
	"time"

	"famtreebot/internal/models"
)

type eventRepository struct {
	s *Store
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextEventID++
	event.ID = r.s.nextEventID
	event.CreatedAt = time.Now()
	r.s.events[event.ID] = copyEvent(event)

	return event, nil
}

func (r *eventRepository) GetByMember(ctx context.Context, memberID int64) ([]*models.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var events []*models.Event
	for _, event := range r.s.events {
		if event.MemberID == memberID {
			events = append(events, copyEvent(event))
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })

	return events, nil
}
