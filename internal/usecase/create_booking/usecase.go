package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	"github.com/m04kA/SMC-ConsultationService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	couponRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/coupon"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ConsultationService/internal/integrations/meetingservice"
	userClient "github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ConsultationService/pkg/ptr"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

const roomFailureReason = "meeting room provisioning failed"

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	templateRepo  TemplateRepository
	couponRepo    CouponRepository
	userClient    UserServiceClient
	meetingClient MeetingServiceClient
	slotLocker    SlotLocker
	txManager     TransactionManager
	metrics       MetricsRecorder
	timeProvider  TimeProvider
	location      *time.Location
	newID         func() string
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	couponRepo CouponRepository,
	userClient UserServiceClient,
	meetingClient MeetingServiceClient,
	slotLocker SlotLocker,
	txManager TransactionManager,
	metrics MetricsRecorder,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		templateRepo:  templateRepo,
		couponRepo:    couponRepo,
		userClient:    userClient,
		meetingClient: meetingClient,
		slotLocker:    slotLocker,
		txManager:     txManager,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		location:      location,
		newID:         uuid.NewString,
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Доступность слота перепроверяется под блокировкой слота, вставка условна по вместимости.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	day := req.Date.Format(domain.DateFormat)
	uc.logger.Info("CreateBooking: actor=%s, client=%s, track=%s, date=%s, time=%s",
		req.ActorID, req.ClientID, req.Track, day, req.StartTime)

	// 2. Кто и для кого записывает
	actor, clientID, err := uc.resolveParticipants(ctx, req)
	if err != nil {
		return nil, err
	}
	manual := actor.IsAdmin()

	if req.DurationMinutes != nil && !manual {
		uc.logger.Warn("CreateBooking: actor=%s is not allowed to override duration", actor.ID)
		return nil, fmt.Errorf("%w: duration override requires admin role", ErrAccessDenied)
	}

	// 3. Блокировка слота: конкурирующие записи в тот же слот идут по одной
	release, err := uc.slotLocker.Acquire(ctx, slotLockKey(req.Track, day, req.StartTime.String()))
	switch {
	case errors.Is(err, lock.ErrLockTimeout):
		uc.logger.Warn("CreateBooking: slot %s %s %s is busy", req.Track, day, req.StartTime)
		return nil, ErrSlotBusy
	case err != nil:
		// условная вставка в хранилище остаётся последним рубежом
		uc.logger.Warn("CreateBooking: slot lock unavailable, continue without it: %v", err)
	default:
		defer release()
	}

	now := uc.timeProvider.Now()
	opts := availability.Options{Now: now, Location: uc.location, BypassLeadTime: manual}

	var (
		created       *domain.Booking
		couponCharged bool
	)

	// 4. Перепроверка, промокод и вставка в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		couponCharged = false

		tpl, err := uc.templateRepo.GetByTrack(txCtx, req.Track)
		if err != nil {
			if !errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
				return err
			}
			tpl = domain.DefaultTemplate(req.Track)
		}

		def, ok := tpl.FindActiveSlot(req.Date.Weekday(), req.StartTime)
		if !ok || !tpl.IsDayActive(req.Date.Weekday()) {
			return fmt.Errorf("%w: no active slot %s on %s", ErrSlotNotAvailable, req.StartTime, day)
		}

		bookings, err := uc.bookingRepo.ListScheduled(txCtx, req.Track, req.Date, req.Date)
		if err != nil {
			return err
		}
		if !availability.IsSlotAvailable(tpl, availability.NewSnapshot(req.Track, bookings), req.Date, req.StartTime, opts) {
			return fmt.Errorf("%w: %s %s %s", ErrSlotNotAvailable, req.Track, day, req.StartTime)
		}

		booking := &domain.Booking{
			ID:              uc.newID(),
			Track:           req.Track,
			ClientID:        clientID,
			ScheduledDate:   req.Date,
			ScheduledTime:   req.StartTime,
			DurationMinutes: tpl.ConsultationDurationMinutes,
			Status:          domain.StatusScheduled,
			Description:     trimmed(req.Description),
		}

		switch {
		case req.Inherited != nil:
			booking.RescheduledFrom = ptr.Ptr(req.Inherited.RescheduledFrom)
			if req.Inherited.DurationMinutes > 0 {
				booking.DurationMinutes = req.Inherited.DurationMinutes
			}
			if c := req.Inherited.Coupon; c != nil {
				booking.CouponID = ptr.Ptr(c.ID)
				booking.CouponCode = ptr.Ptr(c.Code)
			}
		case req.CouponCode != nil:
			coupon, err := uc.chargeCoupon(txCtx, req, now)
			if err != nil {
				return err
			}
			couponCharged = true
			booking.CouponID = ptr.Ptr(coupon.ID)
			booking.CouponCode = ptr.Ptr(coupon.Code)
			if coupon.FreeMinutes != nil && *coupon.FreeMinutes > 0 {
				booking.DurationMinutes = *coupon.FreeMinutes
			}
		}

		if req.DurationMinutes != nil {
			booking.DurationMinutes = *req.DurationMinutes
		}

		created, err = uc.bookingRepo.CreateIfUnderCapacity(txCtx, booking, def.Capacity)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
				return fmt.Errorf("%w: capacity %d reached", ErrSlotNotAvailable, def.Capacity)
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.metrics.IncSlotConflict(req.Track.String())
			uc.logger.Warn("CreateBooking: %v", err)
			return nil, err
		}
		if errors.Is(err, ErrCouponInvalid) {
			uc.logger.Warn("CreateBooking: %v", err)
			return nil, err
		}
		uc.logger.Error("CreateBooking: track=%s, date=%s, time=%s: %v", req.Track, day, req.StartTime, err)
		return nil, mapStoreError(err)
	}

	// 5. Комната видеовстречи, открывается за 5 минут до начала
	room, err := uc.meetingClient.CreateRoom(ctx, meetingservice.CreateRoomRequest{
		BookingID:       created.ID,
		Track:           created.Track.String(),
		ScheduledAt:     created.ScheduledAt(uc.location),
		OpensAt:         created.RoomOpensAt(uc.location),
		DurationMinutes: created.DurationMinutes,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: create room for booking id=%s: %v", created.ID, err)
		uc.compensate(ctx, created, couponCharged)
		return nil, fmt.Errorf("%w: %v", ErrRoomProvisioning, err)
	}

	if err := uc.bookingRepo.SetRoom(ctx, created.ID, room.ID); err != nil {
		uc.logger.Error("CreateBooking: save room id=%s for booking id=%s: %v", room.ID, created.ID, err)
		uc.closeRoom(ctx, room.ID)
		uc.compensate(ctx, created, couponCharged)
		return nil, mapStoreError(err)
	}
	created.RoomID = ptr.Ptr(room.ID)

	uc.metrics.IncBookingCreated(created.Track.String(), manual)
	uc.logger.Info("CreateBooking: successfully created booking id=%s, room=%s", created.ID, room.ID)

	opensAt := room.OpensAt
	if opensAt.IsZero() {
		opensAt = created.RoomOpensAt(uc.location)
	}
	return &Response{
		Booking:     created,
		JoinURL:     room.JoinURL,
		RoomOpensAt: opensAt,
	}, nil
}

// resolveParticipants проверяет права автора и возвращает ID клиента бронирования
func (uc *UseCase) resolveParticipants(ctx context.Context, req *Request) (*domain.User, string, error) {
	actor, err := uc.userClient.ResolveUser(ctx, req.ActorID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			uc.logger.Warn("CreateBooking: actor id=%s not found", req.ActorID)
			return nil, "", fmt.Errorf("%w: unknown user %s", ErrAccessDenied, req.ActorID)
		}
		uc.logger.Error("CreateBooking: resolve actor id=%s: %v", req.ActorID, err)
		return nil, "", mapUserError(err)
	}

	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		clientID = actor.ID
	}

	switch actor.Role {
	case domain.RoleClient:
		if clientID != actor.ID {
			uc.logger.Warn("CreateBooking: client id=%s tried to book for id=%s", actor.ID, clientID)
			return nil, "", fmt.Errorf("%w: clients may book only for themselves", ErrAccessDenied)
		}
		return actor, clientID, nil
	case domain.RoleAdmin:
		if clientID == actor.ID {
			return actor, clientID, nil
		}
		client, err := uc.userClient.ResolveUser(ctx, clientID)
		if err != nil {
			if errors.Is(err, userClient.ErrUserNotFound) {
				return nil, "", fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
			}
			uc.logger.Error("CreateBooking: resolve client id=%s: %v", clientID, err)
			return nil, "", mapUserError(err)
		}
		if client.Role != domain.RoleClient {
			return nil, "", fmt.Errorf("%w: user %s has role %s", ErrClientNotFound, clientID, client.Role)
		}
		return actor, clientID, nil
	default:
		uc.logger.Warn("CreateBooking: role %s of id=%s cannot create bookings", actor.Role, actor.ID)
		return nil, "", fmt.Errorf("%w: role %s cannot create bookings", ErrAccessDenied, actor.Role)
	}
}

// chargeCoupon находит промокод под блокировкой строки и списывает одно использование
func (uc *UseCase) chargeCoupon(ctx context.Context, req *Request, now time.Time) (*domain.Coupon, error) {
	coupon, err := uc.couponRepo.GetByCode(ctx, *req.CouponCode)
	if err != nil {
		if errors.Is(err, couponRepo.ErrCouponNotFound) {
			return nil, fmt.Errorf("%w: coupon %s not found", ErrCouponInvalid, strings.TrimSpace(*req.CouponCode))
		}
		return nil, err
	}

	if err := validateCoupon(coupon, req, now); err != nil {
		return nil, err
	}

	if err := uc.couponRepo.IncrementUsage(ctx, coupon.ID); err != nil {
		if errors.Is(err, couponRepo.ErrUsageLimitReached) {
			return nil, fmt.Errorf("%w: coupon %s usage limit exhausted", ErrCouponInvalid, coupon.Code)
		}
		return nil, err
	}
	return coupon, nil
}

// compensate отменяет бронирование, для которого не удалось довести запись до конца
func (uc *UseCase) compensate(ctx context.Context, b *domain.Booking, couponCharged bool) {
	ctx = context.WithoutCancel(ctx)

	if err := uc.bookingRepo.Cancel(ctx, b.ID, ptr.Ptr(roomFailureReason), domain.RoleSystem); err != nil {
		uc.logger.Error("CreateBooking: compensation cancel of booking id=%s failed: %v", b.ID, err)
		return
	}
	if couponCharged && b.CouponID != nil {
		if err := uc.couponRepo.ReleaseUsage(ctx, *b.CouponID); err != nil {
			uc.logger.Error("CreateBooking: release coupon id=%d failed: %v", *b.CouponID, err)
		}
	}
	uc.logger.Warn("CreateBooking: booking id=%s cancelled by compensation", b.ID)
}

func (uc *UseCase) closeRoom(ctx context.Context, roomID string) {
	if err := uc.meetingClient.CloseRoom(context.WithoutCancel(ctx), roomID); err != nil {
		uc.logger.Error("CreateBooking: close room id=%s failed: %v", roomID, err)
	}
}

func slotLockKey(track domain.Track, day, start string) string {
	return fmt.Sprintf("slot:%s:%s:%s", track, day, start)
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

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrStoreUnavailable),
		errors.Is(err, scheduleRepo.ErrStoreUnavailable),
		errors.Is(err, couponRepo.ErrStoreUnavailable),
		errors.Is(err, txmanager.ErrBeginTx),
		errors.Is(err, txmanager.ErrCommitTx):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func mapUserError(err error) error {
	if errors.Is(err, userClient.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
