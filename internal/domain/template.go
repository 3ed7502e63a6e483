package domain

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

// WeekdaySet набор дней недели (бит на день, time.Sunday = бит 0)
type WeekdaySet uint8

// NewWeekdaySet собирает набор из списка дней
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s | 1<<uint(d)
}

func (s WeekdaySet) Without(d time.Weekday) WeekdaySet {
	return s &^ (1 << uint(d))
}

// Days дни набора по порядку, начиная с воскресенья
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// TimeSlotDefinition повторяющийся еженедельно слот: день недели + время начала + вместимость
type TimeSlotDefinition struct {
	ID        int64
	Track     Track
	Weekday   time.Weekday
	StartTime types.TimeString
	Capacity  int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleTemplate шаблон расписания направления.
// Шаблон не удаляется, только заменяется администратором.
type ScheduleTemplate struct {
	Track                       Track
	ActiveDays                  WeekdaySet
	ConsultationDurationMinutes int
	BufferMinutes               int
	MinLeadTimeMinutes          int
	CancellationLeadHours       int
	// Slots в порядке добавления
	Slots     []TimeSlotDefinition
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultTemplate шаблон направления, если администратор его ещё не настроил: без слотов
func DefaultTemplate(track Track) *ScheduleTemplate {
	return &ScheduleTemplate{
		Track:                       track,
		ActiveDays:                  NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		ConsultationDurationMinutes: DefaultConsultationDurationMinutes,
		BufferMinutes:               DefaultBufferMinutes,
		MinLeadTimeMinutes:          track.DefaultLeadTimeMinutes(),
		CancellationLeadHours:       DefaultCancellationLeadHours,
	}
}

// IsDayActive день недели открыт для записи
func (t *ScheduleTemplate) IsDayActive(d time.Weekday) bool {
	return t.ActiveDays.Has(d)
}

// ActiveSlotsFor активные слоты дня недели по возрастанию времени начала.
// При равном времени остаётся первый по порядку добавления.
func (t *ScheduleTemplate) ActiveSlotsFor(d time.Weekday) []TimeSlotDefinition {
	slots := make([]TimeSlotDefinition, 0)
	for _, s := range t.Slots {
		if s.IsActive && s.Weekday == d {
			slots = append(slots, s)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Minutes() < slots[j].StartTime.Minutes()
	})

	deduped := slots[:0]
	for i, s := range slots {
		if i > 0 && s.StartTime.Equal(deduped[len(deduped)-1].StartTime) {
			continue
		}
		deduped = append(deduped, s)
	}
	return deduped
}

// FindActiveSlot активный слот дня недели с указанным временем начала
func (t *ScheduleTemplate) FindActiveSlot(d time.Weekday, start types.TimeString) (TimeSlotDefinition, bool) {
	for _, s := range t.ActiveSlotsFor(d) {
		if s.StartTime.Equal(start) {
			return s, true
		}
	}
	return TimeSlotDefinition{}, false
}

func (t *ScheduleTemplate) MinLeadTime() time.Duration {
	return time.Duration(t.MinLeadTimeMinutes) * time.Minute
}

func (t *ScheduleTemplate) CancellationLeadTime() time.Duration {
	return time.Duration(t.CancellationLeadHours) * time.Hour
}
