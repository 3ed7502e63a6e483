package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ConsultationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ConsultationService/pkg/types"
)

var bookingColumns = []string{
	"id",
	"track",
	"client_id",
	"specialist_id",
	"scheduled_date",
	"scheduled_time",
	"duration_minutes",
	"status",
	"description",
	"coupon_id",
	"coupon_code",
	"room_id",
	"rescheduled_from",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"completed_at",
	"created_at",
	"updated_at",
}

// Repository журнал бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateIfUnderCapacity вставляет бронирование только если в слоте
// (track, scheduled_date, scheduled_time) запланировано меньше capacity бронирований.
// Проверка и вставка - один INSERT ... SELECT ... WHERE count < capacity.
//
// Внутри транзакции дополнительно берётся advisory-блокировка слота до конца транзакции,
// поэтому конкурирующие вставки в один слот выполняются строго по очереди.
// Если мест нет, возвращает ErrSlotNotAvailable.
func (r *Repository) CreateIfUnderCapacity(ctx context.Context, booking *domain.Booking, capacity int) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if dbmetrics.IsInTransaction(ctx) {
		if err := r.lockSlot(ctx, executor, booking); err != nil {
			return nil, err
		}
	}

	date := booking.ScheduledDate.Format(domain.DateFormat)
	start := booking.ScheduledTime.String()

	values := squirrel.Select().
		Column("?::uuid", booking.ID).
		Column("?::varchar", string(booking.Track)).
		Column("?::varchar", booking.ClientID).
		Column("?::varchar", booking.SpecialistID).
		Column("?::date", date).
		Column("?::time", start).
		Column("?::integer", booking.DurationMinutes).
		Column("?::varchar", string(booking.Status)).
		Column("?::text", booking.Description).
		Column("?::bigint", booking.CouponID).
		Column("?::varchar", booking.CouponCode).
		Column("?::uuid", booking.RescheduledFrom).
		Where(
			"(SELECT COUNT(*) FROM bookings WHERE track = ? AND scheduled_date = ?::date AND scheduled_time = ?::time AND status = ?) < ?",
			string(booking.Track), date, start, string(domain.StatusScheduled), capacity,
		)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"track",
			"client_id",
			"specialist_id",
			"scheduled_date",
			"scheduled_time",
			"duration_minutes",
			"status",
			"description",
			"coupon_id",
			"coupon_code",
			"rescheduled_from",
		).
		Select(values).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateIfUnderCapacity - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotAvailable
		}
		return nil, fmt.Errorf("%w: CreateIfUnderCapacity - execute insert: %v", execErr(err), err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

func (r *Repository) lockSlot(ctx context.Context, executor DBExecutor, booking *domain.Booking) error {
	key, err := advisoryKey(booking)
	if err != nil {
		return fmt.Errorf("%w: CreateIfUnderCapacity - %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("%w: CreateIfUnderCapacity - lock slot %s: %v", execErr(err), key, err)
	}
	return nil
}

// advisoryKey ключ блокировки слота; "10:00" и "10:00:00" дают один ключ
func advisoryKey(booking *domain.Booking) (string, error) {
	start, err := types.NewTimeStringFromString(booking.ScheduledTime.String())
	if err != nil {
		return "", fmt.Errorf("slot time %q: %v", booking.ScheduledTime, err)
	}
	return fmt.Sprintf("slot:%s:%s:%s", booking.Track, booking.ScheduledDate.Format(domain.DateFormat), start), nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan: %v", execErr(err), err)
	}

	return booking, nil
}

// List получает бронирования по фильтру, по возрастанию даты и времени
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From("bookings")

	if filter.Track != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"track": string(*filter.Track)})
	}
	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.SpecialistID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"specialist_id": *filter.SpecialistID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"scheduled_date": filter.EndDate.Format(domain.DateFormat)})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}

	query, args, err := selectBuilder.
		OrderBy("scheduled_date ASC", "scheduled_time ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", execErr(err), err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListScheduled запланированные бронирования направления в диапазоне дат (включительно)
func (r *Repository) ListScheduled(ctx context.Context, track domain.Track, from, to time.Time) ([]*domain.Booking, error) {
	status := domain.StatusScheduled
	return r.List(ctx, domain.BookingsFilter{
		Track:     &track,
		StartDate: &from,
		EndDate:   &to,
		Status:    &status,
	})
}

// Cancel переводит запланированное бронирование в cancelled.
// Возвращает ErrNotScheduled, если бронирование уже не запланировано.
func (r *Repository) Cancel(ctx context.Context, id string, reason *string, by domain.Role) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_by", string(by)).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusScheduled)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "Cancel", query, args)
}

// Complete переводит запланированное бронирование в completed
func (r *Repository) Complete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(domain.StatusCompleted)).
		Set("completed_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusScheduled)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Complete - build update query: %v", ErrBuildQuery, err)
	}

	return r.execSingle(ctx, executor, "Complete", query, args)
}

// AssignSpecialist перезаписывает специалиста запланированного бронирования
func (r *Repository) AssignSpecialist(ctx context.Context, id string, specialistID string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("specialist_id", specialistID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(domain.StatusScheduled)}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: AssignSpecialist - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotScheduled
		}
		return nil, fmt.Errorf("%w: AssignSpecialist - scan: %v", execErr(err), err)
	}
	return booking, nil
}

// SetRoom сохраняет идентификатор комнаты видеовстречи
func (r *Repository) SetRoom(ctx context.Context, id string, roomID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("room_id", roomID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetRoom - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetRoom - execute update: %v", execErr(err), err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetRoom - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *Repository) execSingle(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", execErr(err), op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrNotScheduled
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                      domain.Booking
		track, status          string
		specialistID           sql.NullString
		description            sql.NullString
		couponID               sql.NullInt64
		couponCode             sql.NullString
		roomID                 sql.NullString
		rescheduledFrom        sql.NullString
		cancellationReason     sql.NullString
		cancelledBy            sql.NullString
		cancelledAt, completed sql.NullTime
		createdAt, updatedAt   sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&track,
		&b.ClientID,
		&specialistID,
		&b.ScheduledDate,
		&b.ScheduledTime,
		&b.DurationMinutes,
		&status,
		&description,
		&couponID,
		&couponCode,
		&roomID,
		&rescheduledFrom,
		&cancellationReason,
		&cancelledBy,
		&cancelledAt,
		&completed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Track = domain.Track(track)
	b.Status = domain.BookingStatus(status)
	b.SpecialistID = nullString(specialistID)
	b.Description = nullString(description)
	b.CouponCode = nullString(couponCode)
	b.RoomID = nullString(roomID)
	b.RescheduledFrom = nullString(rescheduledFrom)
	b.CancellationReason = nullString(cancellationReason)
	if couponID.Valid {
		b.CouponID = &couponID.Int64
	}
	if cancelledBy.Valid {
		role := domain.Role(cancelledBy.String)
		b.CancelledBy = &role
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if completed.Valid {
		b.CompletedAt = &completed.Time
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings: %v", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows iteration: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
