package templates

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

const minutesPerDay = 24 * 60

// validateTemplate бизнес-ограничения шаблона
func validateTemplate(tpl *domain.ScheduleTemplate) error {
	if tpl.ConsultationDurationMinutes < domain.MinConsultationDurationMinutes ||
		tpl.ConsultationDurationMinutes > domain.MaxConsultationDurationMinutes {
		return fmt.Errorf("%w: consultationDurationMinutes must be between %d and %d", ErrInvalidInput,
			domain.MinConsultationDurationMinutes, domain.MaxConsultationDurationMinutes)
	}

	if tpl.BufferMinutes < domain.MinBufferMinutes || tpl.BufferMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferMinutes must be between %d and %d", ErrInvalidInput,
			domain.MinBufferMinutes, domain.MaxBufferMinutes)
	}

	if tpl.MinLeadTimeMinutes < domain.MinLeadTimeMinutes || tpl.MinLeadTimeMinutes > domain.MaxLeadTimeMinutes {
		return fmt.Errorf("%w: minLeadTimeMinutes must be between %d and %d", ErrInvalidInput,
			domain.MinLeadTimeMinutes, domain.MaxLeadTimeMinutes)
	}

	if tpl.CancellationLeadHours < domain.MinCancellationLeadHours || tpl.CancellationLeadHours > domain.MaxCancellationLeadHours {
		return fmt.Errorf("%w: cancellationLeadHours must be between %d and %d", ErrInvalidInput,
			domain.MinCancellationLeadHours, domain.MaxCancellationLeadHours)
	}

	if len(tpl.Slots) > domain.MaxSlotsPerTemplate {
		return fmt.Errorf("%w: at most %d slots per template", ErrInvalidInput, domain.MaxSlotsPerTemplate)
	}

	seenIDs := make(map[int64]bool, len(tpl.Slots))
	for i, s := range tpl.Slots {
		if s.Capacity < domain.MinSlotCapacity || s.Capacity > domain.MaxSlotCapacity {
			return fmt.Errorf("%w: slots[%d]: capacity must be between %d and %d", ErrInvalidInput, i,
				domain.MinSlotCapacity, domain.MaxSlotCapacity)
		}
		if s.ID != 0 {
			if seenIDs[s.ID] {
				return fmt.Errorf("%w: slots[%d]: id %d is repeated", ErrInvalidInput, i, s.ID)
			}
			seenIDs[s.ID] = true
		}
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		if err := validateDaySlots(tpl, d); err != nil {
			return err
		}
	}
	return nil
}

// validateDaySlots активные слоты дня не пересекаются с учётом буфера и заканчиваются до полуночи
func validateDaySlots(tpl *domain.ScheduleTemplate, d time.Weekday) error {
	slots := make([]domain.TimeSlotDefinition, 0)
	for _, s := range tpl.Slots {
		if s.IsActive && s.Weekday == d {
			slots = append(slots, s)
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Minutes() < slots[j].StartTime.Minutes()
	})

	step := tpl.ConsultationDurationMinutes + tpl.BufferMinutes
	for i, s := range slots {
		if s.StartTime.Minutes()+tpl.ConsultationDurationMinutes > minutesPerDay {
			return fmt.Errorf("%w: %s %s: consultation ends after midnight", ErrInvalidInput, d, s.StartTime)
		}
		if i == 0 {
			continue
		}

		prev := slots[i-1]
		if prev.StartTime.Equal(s.StartTime) {
			return fmt.Errorf("%w: %s %s: duplicate slot", ErrInvalidInput, d, s.StartTime)
		}
		if s.StartTime.Minutes()-prev.StartTime.Minutes() < step {
			return fmt.Errorf("%w: %s %s starts less than %d minutes after %s", ErrInvalidInput,
				d, s.StartTime, step, prev.StartTime)
		}
	}
	return nil
}
