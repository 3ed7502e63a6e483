package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
	userClient "github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ConsultationService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
)

// UseCase перенос: новое бронирование со ссылкой на старое, затем отмена старого.
// Отдельного статуса "перенесено" нет.
type UseCase struct {
	bookingRepo   BookingRepository
	templateRepo  TemplateRepository
	creator       BookingCreator
	userClient    UserServiceClient
	meetingClient MeetingServiceClient
	metrics       MetricsRecorder
	timeProvider  TimeProvider
	location      *time.Location
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	creator BookingCreator,
	userClient UserServiceClient,
	meetingClient MeetingServiceClient,
	metrics MetricsRecorder,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		templateRepo:  templateRepo,
		creator:       creator,
		userClient:    userClient,
		meetingClient: meetingClient,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		location:      location,
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет перенос. Ошибки создания нового бронирования возвращаются
// как есть (create_booking.Err*), старое бронирование в этом случае не трогается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("RescheduleBooking: booking id=%s to %s %s by user=%s",
		req.BookingID, req.Date.Format(domain.DateFormat), req.StartTime, req.ActorID)

	actor, err := uc.userClient.ResolveUser(ctx, req.ActorID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			return nil, ErrAccessDenied
		}
		uc.logger.Error("RescheduleBooking: resolve user id=%s: %v", req.ActorID, err)
		if errors.Is(err, userClient.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	previous, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%s not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: get booking id=%s: %v", req.BookingID, err)
		return nil, mapStoreError(err)
	}

	// переносить может владелец-клиент или администратор
	if !actor.IsAdmin() && !(actor.Role == domain.RoleClient && previous.ClientID == actor.ID) {
		uc.logger.Warn("RescheduleBooking: access denied for user=%s to booking id=%s", actor.ID, previous.ID)
		return nil, ErrAccessDenied
	}

	if previous.ScheduledDate.Format(domain.DateFormat) == req.Date.Format(domain.DateFormat) &&
		previous.ScheduledTime.Equal(req.StartTime) {
		return nil, ErrSameSlot
	}

	tpl, err := uc.templateRepo.GetByTrack(ctx, previous.Track)
	if err != nil {
		if !errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			uc.logger.Error("RescheduleBooking: get template track=%s: %v", previous.Track, err)
			return nil, mapStoreError(err)
		}
		tpl = domain.DefaultTemplate(previous.Track)
	}

	if err := domain.CheckCancel(previous, actor, tpl.CancellationLeadTime(), uc.timeProvider.Now(), uc.location); err != nil {
		uc.logger.Warn("RescheduleBooking: booking id=%s: %v", previous.ID, err)
		return nil, mapPolicyError(err)
	}

	description := req.Description
	if description == nil {
		description = previous.Description
	}

	var coupon *domain.CouponRef
	if previous.CouponID != nil {
		coupon = &domain.CouponRef{ID: *previous.CouponID, Code: ptr.Value(previous.CouponCode)}
	}

	current, err := uc.creator.Execute(ctx, &create_booking.Request{
		ActorID:     actor.ID,
		ClientID:    previous.ClientID,
		Track:       previous.Track,
		Date:        req.Date,
		StartTime:   req.StartTime,
		Description: description,
		Inherited: &create_booking.Inherited{
			RescheduledFrom: previous.ID,
			DurationMinutes: previous.DurationMinutes,
			Coupon:          coupon,
		},
	})
	if err != nil {
		uc.logger.Warn("RescheduleBooking: create new booking for id=%s: %v", previous.ID, err)
		return nil, err
	}

	reason := fmt.Sprintf("rescheduled to %s", current.Booking.ID)
	if err := uc.bookingRepo.Cancel(ctx, previous.ID, &reason, actor.Role); err != nil {
		uc.logger.Error("RescheduleBooking: cancel previous booking id=%s: %v", previous.ID, err)
		uc.rollback(ctx, current.Booking)
		if errors.Is(err, bookingRepo.ErrNotScheduled) {
			return nil, ErrCannotReschedule
		}
		return nil, mapStoreError(err)
	}

	if previous.RoomID != nil {
		if err := uc.meetingClient.CloseRoom(context.WithoutCancel(ctx), *previous.RoomID); err != nil {
			uc.logger.Warn("RescheduleBooking: close room id=%s: %v", *previous.RoomID, err)
		}
	}
	uc.metrics.IncBookingCancelled(previous.Track.String(), string(actor.Role))

	cancelled, err := uc.bookingRepo.GetByID(ctx, previous.ID)
	if err != nil {
		// перенос уже состоялся, старое отдаём по последнему известному состоянию
		uc.logger.Warn("RescheduleBooking: reload booking id=%s: %v", previous.ID, err)
		previous.Status = domain.StatusCancelled
		previous.CancellationReason = &reason
		cancelled = previous
	}

	uc.logger.Info("RescheduleBooking: booking id=%s moved to id=%s", previous.ID, current.Booking.ID)
	return &Response{Previous: cancelled, Current: current}, nil
}

// rollback отменяет только что созданное бронирование, если старое отменить не удалось
func (uc *UseCase) rollback(ctx context.Context, b *domain.Booking) {
	ctx = context.WithoutCancel(ctx)

	if err := uc.bookingRepo.Cancel(ctx, b.ID, ptr.Ptr("reschedule aborted"), domain.RoleSystem); err != nil {
		uc.logger.Error("RescheduleBooking: rollback of booking id=%s failed: %v", b.ID, err)
	}
	if b.RoomID != nil {
		if err := uc.meetingClient.CloseRoom(ctx, *b.RoomID); err != nil {
			uc.logger.Warn("RescheduleBooking: close room id=%s: %v", *b.RoomID, err)
		}
	}
}

func mapPolicyError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotOwner):
		return ErrAccessDenied
	case errors.Is(err, domain.ErrCancellationWindowClosed):
		return ErrCancellationWindowClosed
	case errors.Is(err, domain.ErrBookingNotActive):
		return ErrCannotReschedule
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, bookingRepo.ErrStoreUnavailable) || errors.Is(err, scheduleRepo.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
