package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
	userClient "github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ConsultationService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo   BookingRepository
	templateRepo  TemplateRepository
	userClient    UserServiceClient
	meetingClient MeetingServiceClient
	txManager     TransactionManager
	metrics       MetricsRecorder
	timeProvider  TimeProvider
	location      *time.Location
	logger        Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	userClient UserServiceClient,
	meetingClient MeetingServiceClient,
	txManager TransactionManager,
	metrics MetricsRecorder,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:   bookingRepo,
		templateRepo:  templateRepo,
		userClient:    userClient,
		meetingClient: meetingClient,
		txManager:     txManager,
		metrics:       metrics,
		timeProvider:  realTimeProvider{},
		location:      location,
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID.
// Видят клиент, назначенный специалист и администратор.
func (s *Service) GetByID(ctx context.Context, id string, actorID string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, actorID)

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, mapStoreError("GetByID", err)
	}

	if !domain.CanView(booking, actor) {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%s", actorID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings история бронирований пользователя.
// Для специалиста - назначенные ему консультации.
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%s by user=%s, status=%v", req.UserID, req.ActorID, req.Status)

	actor, err := s.resolveActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	if actor.ID != req.UserID && !actor.IsAdmin() {
		s.logger.Warn("GetUserBookings: access denied for user=%s to bookings of user=%s", actor.ID, req.UserID)
		return nil, ErrAccessDenied
	}

	filter := domain.BookingsFilter{}
	if actor.ID == req.UserID && actor.IsSpecialist() {
		filter.SpecialistID = &req.UserID
	} else {
		filter.ClientID = &req.UserID
	}

	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%s", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%s: %v", req.UserID, err)
		return nil, mapStoreError("GetUserBookings", err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%s", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetTrackBookings выборка бронирований по направлению, периоду и статусу. Только администратор.
func (s *Service) GetTrackBookings(ctx context.Context, req *models.GetTrackBookingsRequest) (*models.BookingListResponse, error) {
	bookings, err := s.ListForAdmin(ctx, req)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBookingList(bookings), nil
}

// ListForAdmin то же, что GetTrackBookings, но в доменных моделях (для выгрузки)
func (s *Service) ListForAdmin(ctx context.Context, req *models.GetTrackBookingsRequest) ([]*domain.Booking, error) {
	s.logger.Info("GetTrackBookings: track=%v, status=%v by user=%s", req.Track, req.Status, req.ActorID)

	actor, err := s.resolveActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		s.logger.Warn("GetTrackBookings: access denied for user=%s", actor.ID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetTrackBookings: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, fmt.Errorf("%w: startDate is after endDate", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetTrackBookings: repository error: %v", err)
		return nil, mapStoreError("GetTrackBookings", err)
	}

	s.logger.Info("GetTrackBookings: successfully fetched %d bookings", len(bookings))
	return bookings, nil
}

// Cancel отменяет бронирование. Место в слоте освобождается сразу.
func (s *Service) Cancel(ctx context.Context, bookingID string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s by user=%s", bookingID, req.ActorID)

	if req.CancellationReason != nil && len([]rune(*req.CancellationReason)) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	actor, err := s.resolveActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	var cancelled *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return err
		}

		tpl, err := s.templateRepo.GetByTrack(txCtx, booking.Track)
		if err != nil {
			if !errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
				return err
			}
			tpl = domain.DefaultTemplate(booking.Track)
		}

		if err := domain.CheckCancel(booking, actor, tpl.CancellationLeadTime(), s.timeProvider.Now(), s.location); err != nil {
			return err
		}

		if err := s.bookingRepo.Cancel(txCtx, bookingID, trimmed(req.CancellationReason), actor.Role); err != nil {
			return err
		}

		cancelled, err = s.bookingRepo.GetByID(txCtx, bookingID)
		return err
	})
	if err != nil {
		if mapped := mapCancelError(err); mapped != nil {
			s.logger.Warn("Cancel: booking id=%s by user=%s: %v", bookingID, actor.ID, err)
			return nil, mapped
		}
		s.logger.Error("Cancel: booking id=%s: %v", bookingID, err)
		return nil, mapStoreError("Cancel", err)
	}

	s.closeRoom(ctx, cancelled)
	s.metrics.IncBookingCancelled(cancelled.Track.String(), string(actor.Role))

	s.logger.Info("Cancel: successfully cancelled booking id=%s by %s", bookingID, actor.Role)
	return models.FromDomainBooking(cancelled), nil
}

// AssignSpecialist назначает или переназначает специалиста до завершения консультации.
// Вместимость слота не затрагивается.
func (s *Service) AssignSpecialist(ctx context.Context, bookingID string, req *models.AssignSpecialistRequest) (*models.BookingResponse, error) {
	s.logger.Info("AssignSpecialist: booking id=%s, specialist=%s by user=%s", bookingID, req.SpecialistID, req.ActorID)

	specialistID := strings.TrimSpace(req.SpecialistID)
	if specialistID == "" {
		return nil, fmt.Errorf("%w: specialistId is required", ErrInvalidInput)
	}

	actor, err := s.resolveActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		s.logger.Warn("AssignSpecialist: access denied for user=%s", actor.ID)
		return nil, ErrAccessDenied
	}

	specialist, err := s.userClient.ResolveUser(ctx, specialistID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			s.logger.Warn("AssignSpecialist: user id=%s not found", specialistID)
			return nil, ErrSpecialistNotFound
		}
		s.logger.Error("AssignSpecialist: resolve user id=%s: %v", specialistID, err)
		return nil, mapUserError(err)
	}
	if !specialist.IsSpecialist() {
		s.logger.Warn("AssignSpecialist: user id=%s has role %s", specialistID, specialist.Role)
		return nil, fmt.Errorf("%w: user %s is not a specialist", ErrSpecialistNotFound, specialistID)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("AssignSpecialist: repository error for booking id=%s: %v", bookingID, err)
		return nil, mapStoreError("AssignSpecialist", err)
	}
	if !booking.CanAssignSpecialist() {
		s.logger.Warn("AssignSpecialist: booking id=%s has status %s", bookingID, booking.Status)
		return nil, fmt.Errorf("%w: booking is %s", ErrInvalidStatus, booking.Status)
	}

	updated, err := s.bookingRepo.AssignSpecialist(ctx, bookingID, specialist.ID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotScheduled) {
			return nil, fmt.Errorf("%w: booking is no longer scheduled", ErrInvalidStatus)
		}
		s.logger.Error("AssignSpecialist: repository error for booking id=%s: %v", bookingID, err)
		return nil, mapStoreError("AssignSpecialist", err)
	}

	s.logger.Info("AssignSpecialist: booking id=%s assigned to specialist=%s", bookingID, specialist.ID)
	return models.FromDomainBooking(updated), nil
}

// Complete отмечает консультацию проведённой (вызывается сервисом видеовстреч)
func (s *Service) Complete(ctx context.Context, bookingID string) (*models.BookingResponse, error) {
	s.logger.Info("Complete: booking id=%s", bookingID)

	var completed *domain.Booking
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Complete(txCtx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrNotScheduled) {
				// различаем "нет такого" и "уже не запланировано"
				if _, getErr := s.bookingRepo.GetByID(txCtx, bookingID); getErr != nil {
					return getErr
				}
			}
			return err
		}

		var err error
		completed, err = s.bookingRepo.GetByID(txCtx, bookingID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrNotScheduled):
			s.logger.Warn("Complete: booking id=%s is not scheduled", bookingID)
			return nil, fmt.Errorf("%w: booking is not scheduled", ErrInvalidStatus)
		}
		s.logger.Error("Complete: booking id=%s: %v", bookingID, err)
		return nil, mapStoreError("Complete", err)
	}

	s.logger.Info("Complete: booking id=%s completed", bookingID)
	return models.FromDomainBooking(completed), nil
}

func (s *Service) resolveActor(ctx context.Context, actorID string) (*domain.User, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	actor, err := s.userClient.ResolveUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			s.logger.Warn("resolveActor: user id=%s not found", actorID)
			return nil, ErrAccessDenied
		}
		s.logger.Error("resolveActor: user id=%s: %v", actorID, err)
		return nil, mapUserError(err)
	}
	return actor, nil
}

// closeRoom комната отменённой консультации закрывается без влияния на результат отмены
func (s *Service) closeRoom(ctx context.Context, b *domain.Booking) {
	if b == nil || b.RoomID == nil {
		return
	}
	if err := s.meetingClient.CloseRoom(context.WithoutCancel(ctx), *b.RoomID); err != nil {
		s.logger.Warn("Cancel: close room id=%s for booking id=%s: %v", *b.RoomID, b.ID, err)
	}
}

func mapCancelError(err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		return ErrBookingNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return ErrAccessDenied
	case errors.Is(err, domain.ErrCancellationWindowClosed):
		return ErrCancellationWindowClosed
	case errors.Is(err, domain.ErrBookingNotActive), errors.Is(err, bookingRepo.ErrNotScheduled):
		return ErrCannotCancel
	}
	return nil
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrStoreUnavailable),
		errors.Is(err, scheduleRepo.ErrStoreUnavailable),
		errors.Is(err, txmanager.ErrBeginTx),
		errors.Is(err, txmanager.ErrCommitTx):
		return fmt.Errorf("%w: %s - %v", ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

func mapUserError(err error) error {
	if errors.Is(err, userClient.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
