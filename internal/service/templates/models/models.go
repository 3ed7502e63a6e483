package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

var (
	// ErrInvalidWeekday неизвестный день недели
	ErrInvalidWeekday = errors.New("invalid weekday")
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday принимает английское название дня в любом регистре
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return d, nil
}

// WeekdayName название дня в нижнем регистре
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// Request модели

// SlotRequest слот шаблона. Без ID - новый слот.
type SlotRequest struct {
	ID        *int64 `json:"id,omitempty"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"startTime"`
	Capacity  int    `json:"capacity"`
	IsActive  *bool  `json:"isActive,omitempty"` // по умолчанию true
}

// ReplaceTemplateRequest полная замена шаблона направления.
// Слоты, которых нет в запросе, деактивируются.
type ReplaceTemplateRequest struct {
	ActorID                     string        `json:"-"`
	ActiveDays                  []string      `json:"activeDays"`
	ConsultationDurationMinutes int           `json:"consultationDurationMinutes"`
	BufferMinutes               int           `json:"bufferMinutes"`
	MinLeadTimeMinutes          *int          `json:"minLeadTimeMinutes,omitempty"`
	CancellationLeadHours       *int          `json:"cancellationLeadHours,omitempty"`
	Slots                       []SlotRequest `json:"slots"`
}

// ToDomain собирает шаблон; значения не проверяются на бизнес-ограничения
func (r *ReplaceTemplateRequest) ToDomain(track domain.Track) (*domain.ScheduleTemplate, error) {
	tpl := domain.DefaultTemplate(track)
	tpl.ActiveDays = 0
	for _, name := range r.ActiveDays {
		d, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		tpl.ActiveDays = tpl.ActiveDays.With(d)
	}

	tpl.ConsultationDurationMinutes = r.ConsultationDurationMinutes
	tpl.BufferMinutes = r.BufferMinutes
	if r.MinLeadTimeMinutes != nil {
		tpl.MinLeadTimeMinutes = *r.MinLeadTimeMinutes
	}
	if r.CancellationLeadHours != nil {
		tpl.CancellationLeadHours = *r.CancellationLeadHours
	}

	tpl.Slots = make([]domain.TimeSlotDefinition, 0, len(r.Slots))
	for i, s := range r.Slots {
		d, err := ParseWeekday(s.Weekday)
		if err != nil {
			return nil, fmt.Errorf("slots[%d]: %w", i, err)
		}
		start, err := types.NewTimeStringFromString(s.StartTime)
		if err != nil {
			return nil, fmt.Errorf("slots[%d]: %w", i, err)
		}

		slot := domain.TimeSlotDefinition{
			Track:     track,
			Weekday:   d,
			StartTime: start,
			Capacity:  s.Capacity,
			IsActive:  s.IsActive == nil || *s.IsActive,
		}
		if s.ID != nil {
			slot.ID = *s.ID
		}
		tpl.Slots = append(tpl.Slots, slot)
	}

	return tpl, nil
}

// Response модели

// SlotResponse слот шаблона
type SlotResponse struct {
	ID        int64  `json:"id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"startTime"`
	Capacity  int    `json:"capacity"`
	IsActive  bool   `json:"isActive"`
}

// TemplateResponse шаблон расписания направления
type TemplateResponse struct {
	Track                       string         `json:"track"`
	ActiveDays                  []string       `json:"activeDays"`
	ConsultationDurationMinutes int            `json:"consultationDurationMinutes"`
	BufferMinutes               int            `json:"bufferMinutes"`
	MinLeadTimeMinutes          int            `json:"minLeadTimeMinutes"`
	CancellationLeadHours       int            `json:"cancellationLeadHours"`
	Slots                       []SlotResponse `json:"slots"`
	UpdatedAt                   *time.Time     `json:"updatedAt,omitempty"`
}

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(tpl *domain.ScheduleTemplate) *TemplateResponse {
	resp := &TemplateResponse{
		Track:                       tpl.Track.String(),
		ActiveDays:                  make([]string, 0, 7),
		ConsultationDurationMinutes: tpl.ConsultationDurationMinutes,
		BufferMinutes:               tpl.BufferMinutes,
		MinLeadTimeMinutes:          tpl.MinLeadTimeMinutes,
		CancellationLeadHours:       tpl.CancellationLeadHours,
		Slots:                       make([]SlotResponse, 0, len(tpl.Slots)),
	}

	for _, d := range tpl.ActiveDays.Days() {
		resp.ActiveDays = append(resp.ActiveDays, WeekdayName(d))
	}
	for _, s := range tpl.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			ID:        s.ID,
			Weekday:   WeekdayName(s.Weekday),
			StartTime: s.StartTime.String(),
			Capacity:  s.Capacity,
			IsActive:  s.IsActive,
		})
	}
	if !tpl.UpdatedAt.IsZero() {
		updated := tpl.UpdatedAt
		resp.UpdatedAt = &updated
	}

	return resp
}
