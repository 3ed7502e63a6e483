package get_available_dates

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

// UseCase use case для получения дат со свободными слотами
type UseCase struct {
	bookingRepo  BookingRepository
	templateRepo TemplateRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	maxRangeDays int
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	templateRepo TemplateRepository,
	txManager TransactionManager,
	location *time.Location,
	maxRangeDays int,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		templateRepo: templateRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		maxRangeDays: maxRangeDays,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case. Занятость всего диапазона читается одним запросом до обхода дат.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req, uc.maxRangeDays); err != nil {
		uc.logger.Warn("GetAvailableDates: validation failed: %v", err)
		return nil, err
	}

	from, to := req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat)
	uc.logger.Info("GetAvailableDates: track=%s, from=%s, to=%s, bypass=%t", req.Track, from, to, req.BypassLeadTime)

	var (
		tpl      *domain.ScheduleTemplate
		bookings []*domain.Booking
	)
	err := uc.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		tpl, err = uc.templateRepo.GetByTrack(ctx, req.Track)
		if err != nil {
			if !errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
				return err
			}
			tpl = domain.DefaultTemplate(req.Track)
		}

		bookings, err = uc.bookingRepo.ListScheduled(ctx, req.Track, req.From, req.To)
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableDates: track=%s, from=%s, to=%s: %v", req.Track, from, to, err)
		return nil, mapStoreError(err)
	}

	dates, err := availability.ListAvailableDates(tpl, availability.NewSnapshot(req.Track, bookings), req.From, req.To, availability.Options{
		Now:            uc.timeProvider.Now(),
		Location:       uc.location,
		BypassLeadTime: req.BypassLeadTime,
	})
	if err != nil {
		if errors.Is(err, availability.ErrInvalidRange) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableDates: track=%s, from=%s, to=%s: %d dates available", req.Track, from, to, len(dates))

	return &Response{
		Track: req.Track,
		From:  req.From,
		To:    req.To,
		Dates: dates,
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
