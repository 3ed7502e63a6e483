package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/psqlbuilder"
)

// Repository хранилище шаблонов расписания и определений слотов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByTrack получает шаблон направления вместе со всеми слотами (в порядке добавления)
func (r *Repository) GetByTrack(ctx context.Context, track domain.Track) (*domain.ScheduleTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"track",
		"active_days",
		"consultation_duration_minutes",
		"buffer_minutes",
		"min_lead_time_minutes",
		"cancellation_lead_hours",
		"created_at",
		"updated_at",
	).
		From("schedule_templates").
		Where(squirrel.Eq{"track": string(track)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByTrack - build select query: %v", ErrBuildQuery, err)
	}

	var (
		tpl                  domain.ScheduleTemplate
		trackValue           string
		activeDays           []int64
		createdAt, updatedAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&trackValue,
		pq.Array(&activeDays),
		&tpl.ConsultationDurationMinutes,
		&tpl.BufferMinutes,
		&tpl.MinLeadTimeMinutes,
		&tpl.CancellationLeadHours,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("%w: GetByTrack - scan template: %v", execErr(err), err)
	}

	tpl.Track = domain.Track(trackValue)
	for _, d := range activeDays {
		tpl.ActiveDays = tpl.ActiveDays.With(time.Weekday(d))
	}
	tpl.CreatedAt = createdAt.Time
	tpl.UpdatedAt = updatedAt.Time

	slots, err := r.listSlots(ctx, executor, track)
	if err != nil {
		return nil, err
	}
	tpl.Slots = slots

	return &tpl, nil
}

func (r *Repository) listSlots(ctx context.Context, executor dbmetrics.DBExecutor, track domain.Track) ([]domain.TimeSlotDefinition, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"track",
		"weekday",
		"start_time",
		"capacity",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("time_slot_definitions").
		Where(squirrel.Eq{"track": string(track)}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listSlots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listSlots - execute query: %v", execErr(err), err)
	}
	defer rows.Close()

	slots := make([]domain.TimeSlotDefinition, 0)
	for rows.Next() {
		var (
			s                    domain.TimeSlotDefinition
			trackValue           string
			weekday              int
			createdAt, updatedAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &trackValue, &weekday, &s.StartTime, &s.Capacity, &s.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: listSlots: %v", ErrScanRow, err)
		}
		s.Track = domain.Track(trackValue)
		s.Weekday = time.Weekday(weekday)
		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listSlots - rows iteration: %v", ErrScanRow, err)
	}

	return slots, nil
}

// Replace заменяет шаблон направления.
// Слоты с ID обновляются, без ID - добавляются, не переданные деактивируются (не удаляются).
// Вызывать внутри транзакции.
func (r *Repository) Replace(ctx context.Context, tpl *domain.ScheduleTemplate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	days := make([]int64, 0, 7)
	for _, d := range tpl.ActiveDays.Days() {
		days = append(days, int64(d))
	}

	query, args, err := psqlbuilder.Insert("schedule_templates").
		Columns(
			"track",
			"active_days",
			"consultation_duration_minutes",
			"buffer_minutes",
			"min_lead_time_minutes",
			"cancellation_lead_hours",
		).
		Values(
			string(tpl.Track),
			pq.Array(days),
			tpl.ConsultationDurationMinutes,
			tpl.BufferMinutes,
			tpl.MinLeadTimeMinutes,
			tpl.CancellationLeadHours,
		).
		Suffix(`ON CONFLICT (track) DO UPDATE SET
			active_days = EXCLUDED.active_days,
			consultation_duration_minutes = EXCLUDED.consultation_duration_minutes,
			buffer_minutes = EXCLUDED.buffer_minutes,
			min_lead_time_minutes = EXCLUDED.min_lead_time_minutes,
			cancellation_lead_hours = EXCLUDED.cancellation_lead_hours,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build upsert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Replace - upsert template: %v", execErr(err), err)
	}

	// Сначала гасим все слоты: переданные включатся обратно ниже
	query, args, err = psqlbuilder.Update("time_slot_definitions").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"track": string(tpl.Track), "is_active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build deactivate query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Replace - deactivate slots: %v", execErr(err), err)
	}

	for _, slot := range tpl.Slots {
		if slot.ID != 0 {
			if err := r.updateSlot(ctx, executor, tpl.Track, slot); err != nil {
				return err
			}
			continue
		}
		if err := r.insertSlot(ctx, executor, tpl.Track, slot); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) updateSlot(ctx context.Context, executor dbmetrics.DBExecutor, track domain.Track, slot domain.TimeSlotDefinition) error {
	query, args, err := psqlbuilder.Update("time_slot_definitions").
		Set("weekday", int(slot.Weekday)).
		Set("start_time", slot.StartTime.String()).
		Set("capacity", slot.Capacity).
		Set("is_active", slot.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID, "track": string(track)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: updateSlot - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: updateSlot id=%d: %v", execErr(err), slot.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updateSlot - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id=%d", ErrSlotNotFound, slot.ID)
	}
	return nil
}

func (r *Repository) insertSlot(ctx context.Context, executor dbmetrics.DBExecutor, track domain.Track, slot domain.TimeSlotDefinition) error {
	query, args, err := psqlbuilder.Insert("time_slot_definitions").
		Columns("track", "weekday", "start_time", "capacity", "is_active").
		Values(string(track), int(slot.Weekday), slot.StartTime.String(), slot.Capacity, slot.IsActive).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertSlot - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertSlot %s %s: %v", execErr(err), slot.Weekday, slot.StartTime, err)
	}
	return nil
}
