package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ConsultationService/internal/availability"
	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/booking"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// UseCase use case для получения свободных слотов на дату
type UseCase struct {
	bookingRepo  BookingRepository
	templateRepo TemplateRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		templateRepo: templateRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	day := req.Date.Format(domain.DateFormat)
	uc.logger.Info("GetAvailableSlots: track=%s, date=%s, bypass=%t", req.Track, day, req.BypassLeadTime)

	var (
		tpl      *domain.ScheduleTemplate
		bookings []*domain.Booking
	)
	// шаблон и занятость читаются в одном снимке
	err := uc.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		tpl, err = uc.templateRepo.GetByTrack(ctx, req.Track)
		if err != nil {
			if !errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
				return err
			}
			tpl = domain.DefaultTemplate(req.Track)
		}

		bookings, err = uc.bookingRepo.ListScheduled(ctx, req.Track, req.Date, req.Date)
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: track=%s, date=%s: %v", req.Track, day, err)
		return nil, mapStoreError(err)
	}

	slots := availability.ListAvailableSlots(tpl, availability.NewSnapshot(req.Track, bookings), req.Date, availability.Options{
		Now:            uc.timeProvider.Now(),
		Location:       uc.location,
		BypassLeadTime: req.BypassLeadTime,
	})

	uc.logger.Info("GetAvailableSlots: track=%s, date=%s: %d slots available", req.Track, day, len(slots))

	return &Response{
		Track: req.Track,
		Date:  req.Date,
		Slots: slots,
	}, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrStoreUnavailable),
		errors.Is(err, scheduleRepo.ErrStoreUnavailable),
		errors.Is(err, txmanager.ErrBeginTx),
		errors.Is(err, txmanager.ErrCommitTx):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
