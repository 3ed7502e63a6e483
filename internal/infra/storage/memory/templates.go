package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
)

// Templates шаблоны расписания
type Templates struct {
	mu     sync.Mutex
	items  map[domain.Track]*domain.ScheduleTemplate
	nextID int64

	Err error
}

func NewTemplates(templates ...*domain.ScheduleTemplate) *Templates {
	t := &Templates{items: make(map[domain.Track]*domain.ScheduleTemplate)}
	for _, tpl := range templates {
		t.items[tpl.Track] = clone(tpl)
		for _, s := range tpl.Slots {
			if s.ID > t.nextID {
				t.nextID = s.ID
			}
		}
	}
	return t
}

func (t *Templates) GetByTrack(_ context.Context, track domain.Track) (*domain.ScheduleTemplate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}

	tpl, ok := t.items[track]
	if !ok {
		return nil, scheduleRepo.ErrTemplateNotFound
	}
	return clone(tpl), nil
}

// Replace повторяет семантику Postgres-репозитория: непереданные слоты деактивируются
func (t *Templates) Replace(_ context.Context, tpl *domain.ScheduleTemplate) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}

	existing := t.items[tpl.Track]
	slots := make([]domain.TimeSlotDefinition, 0)
	byID := map[int64]int{}
	if existing != nil {
		for _, s := range existing.Slots {
			s.IsActive = false
			byID[s.ID] = len(slots)
			slots = append(slots, s)
		}
	}

	for _, s := range tpl.Slots {
		s.Track = tpl.Track
		if s.ID != 0 {
			idx, ok := byID[s.ID]
			if !ok {
				return scheduleRepo.ErrSlotNotFound
			}
			slots[idx] = s
			continue
		}
		t.nextID++
		s.ID = t.nextID
		slots = append(slots, s)
	}

	seen := map[[2]int]bool{}
	for _, s := range slots {
		if !s.IsActive {
			continue
		}
		key := [2]int{int(s.Weekday), s.StartTime.Minutes()}
		if seen[key] {
			return scheduleRepo.ErrDuplicateSlot
		}
		seen[key] = true
	}

	stored := clone(tpl)
	stored.Slots = slots
	t.items[tpl.Track] = stored
	return nil
}

func clone(tpl *domain.ScheduleTemplate) *domain.ScheduleTemplate {
	cp := *tpl
	cp.Slots = append([]domain.TimeSlotDefinition(nil), tpl.Slots...)
	return &cp
}
