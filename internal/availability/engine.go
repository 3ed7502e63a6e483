package availability

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

var ErrInvalidRange = errors.New("availability: start date is after end date")

// Options параметры запроса к движку
type Options struct {
	// Now текущий момент; слоты в прошлом недоступны никогда
	Now time.Time
	// Location часовой пояс расписания, nil = UTC
	Location *time.Location
	// BypassLeadTime ручная запись администратором без минимального срока
	BypassLeadTime bool
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Occupancy все активные слоты даты с остатком мест, включая заполненные.
// Неактивный день недели даёт пустой результат.
func Occupancy(tpl *domain.ScheduleTemplate, ledger *Snapshot, date time.Time) []domain.AvailableSlot {
	if tpl == nil {
		return []domain.AvailableSlot{}
	}
	day := civil(date)
	if !tpl.IsDayActive(day.Weekday()) {
		return []domain.AvailableSlot{}
	}
	return occupancy(tpl, tpl.ActiveSlotsFor(day.Weekday()), ledger, day)
}

// ListAvailableSlots слоты даты, в которые ещё можно записаться, по возрастанию времени.
// Пустой список - нормальный результат, а не ошибка.
func ListAvailableSlots(tpl *domain.ScheduleTemplate, ledger *Snapshot, date time.Time, opts Options) []domain.AvailableSlot {
	if tpl == nil {
		return []domain.AvailableSlot{}
	}
	day := civil(date)
	if !tpl.IsDayActive(day.Weekday()) {
		return []domain.AvailableSlot{}
	}
	return bookable(tpl, tpl.ActiveSlotsFor(day.Weekday()), ledger, day, opts)
}

// ListAvailableDates даты диапазона [start, end], на которые есть хотя бы один свободный слот.
// Слоты дня недели вычисляются один раз, занятость берётся из одного снимка.
func ListAvailableDates(tpl *domain.ScheduleTemplate, ledger *Snapshot, start, end time.Time, opts Options) ([]domain.AvailableDate, error) {
	from, to := civil(start), civil(end)
	if from.After(to) {
		return nil, ErrInvalidRange
	}

	dates := make([]domain.AvailableDate, 0)
	if tpl == nil {
		return dates, nil
	}

	byWeekday := make(map[time.Weekday][]domain.TimeSlotDefinition, 7)
	for _, d := range tpl.ActiveDays.Days() {
		byWeekday[d] = tpl.ActiveSlotsFor(d)
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		defs, ok := byWeekday[day.Weekday()]
		if !ok {
			continue
		}
		if slots := bookable(tpl, defs, ledger, day, opts); len(slots) > 0 {
			dates = append(dates, domain.AvailableDate{Date: day, SlotsAvailable: len(slots)})
		}
	}
	return dates, nil
}

// IsSlotAvailable true тогда и только тогда, когда start есть в ListAvailableSlots той же даты
func IsSlotAvailable(tpl *domain.ScheduleTemplate, ledger *Snapshot, date time.Time, start types.TimeString, opts Options) bool {
	for _, s := range ListAvailableSlots(tpl, ledger, date, opts) {
		if s.StartTime.Equal(start) {
			return true
		}
	}
	return false
}

func occupancy(tpl *domain.ScheduleTemplate, defs []domain.TimeSlotDefinition, ledger *Snapshot, day time.Time) []domain.AvailableSlot {
	slots := make([]domain.AvailableSlot, 0, len(defs))
	for _, def := range defs {
		remaining := def.Capacity - ledger.Booked(day, def.StartTime)
		if remaining < 0 {
			remaining = 0
		}
		slots = append(slots, domain.AvailableSlot{
			StartTime:       def.StartTime,
			DurationMinutes: tpl.ConsultationDurationMinutes,
			Capacity:        def.Capacity,
			Remaining:       remaining,
		})
	}
	return slots
}

func bookable(tpl *domain.ScheduleTemplate, defs []domain.TimeSlotDefinition, ledger *Snapshot, day time.Time, opts Options) []domain.AvailableSlot {
	loc := opts.location()
	earliest := opts.Now
	if !opts.BypassLeadTime {
		earliest = opts.Now.Add(tpl.MinLeadTime())
	}

	result := make([]domain.AvailableSlot, 0, len(defs))
	for _, s := range occupancy(tpl, defs, ledger, day) {
		if s.IsFull() {
			continue
		}
		if s.StartTime.On(day, loc).Before(earliest) {
			continue
		}
		result = append(result, s)
	}
	return result
}

// civil календарная дата без времени и часового пояса
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
