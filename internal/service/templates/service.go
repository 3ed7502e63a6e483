package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-ConsultationService/internal/infra/storage/schedule"
	userClient "github.com/m04kA/SMC-ConsultationService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ConsultationService/internal/service/templates/models"
	"github.com/m04kA/SMC-ConsultationService/pkg/txmanager"
)

// Service шаблоны расписания направлений
type Service struct {
	templateRepo TemplateRepository
	userClient   UserServiceClient
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса шаблонов
func NewService(
	templateRepo TemplateRepository,
	userClient UserServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		templateRepo: templateRepo,
		userClient:   userClient,
		txManager:    txManager,
		logger:       logger,
	}
}

// Get шаблон направления. Пока администратор его не настроил - шаблон по умолчанию без слотов.
// Публичный метод.
func (s *Service) Get(ctx context.Context, track domain.Track) (*models.TemplateResponse, error) {
	if !track.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrack, track)
	}

	tpl, err := s.templateRepo.GetByTrack(ctx, track)
	if err != nil {
		if !errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			s.logger.Error("Get: track=%s: %v", track, err)
			return nil, mapStoreError("Get", err)
		}
		s.logger.Info("Get: no template for track=%s, using default", track)
		tpl = domain.DefaultTemplate(track)
	}

	return models.FromDomainTemplate(tpl), nil
}

// Replace заменяет шаблон направления целиком. Только администратор.
// Уже созданные бронирования не затрагиваются.
func (s *Service) Replace(ctx context.Context, track domain.Track, req *models.ReplaceTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("Replace: track=%s, %d slots by user=%s", track, len(req.Slots), req.ActorID)

	if !track.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrack, track)
	}

	if err := s.checkAdmin(ctx, req.ActorID); err != nil {
		return nil, err
	}

	tpl, err := req.ToDomain(track)
	if err != nil {
		s.logger.Warn("Replace: track=%s: %v", track, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateTemplate(tpl); err != nil {
		s.logger.Warn("Replace: track=%s: %v", track, err)
		return nil, err
	}

	var saved *domain.ScheduleTemplate
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.templateRepo.Replace(txCtx, tpl); err != nil {
			return err
		}
		var err error
		saved, err = s.templateRepo.GetByTrack(txCtx, track)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduleRepo.ErrSlotNotFound):
			s.logger.Warn("Replace: track=%s: %v", track, err)
			return nil, ErrSlotNotFound
		case errors.Is(err, scheduleRepo.ErrDuplicateSlot):
			return nil, fmt.Errorf("%w: duplicate active slot", ErrInvalidInput)
		}
		s.logger.Error("Replace: track=%s: %v", track, err)
		return nil, mapStoreError("Replace", err)
	}

	s.logger.Info("Replace: template of track=%s replaced", track)
	return models.FromDomainTemplate(saved), nil
}

func (s *Service) checkAdmin(ctx context.Context, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return ErrAccessDenied
	}

	actor, err := s.userClient.ResolveUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, userClient.ErrUserNotFound) {
			return ErrAccessDenied
		}
		s.logger.Error("checkAdmin: user id=%s: %v", actorID, err)
		if errors.Is(err, userClient.ErrUnavailable) {
			return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !actor.IsAdmin() {
		s.logger.Warn("checkAdmin: user id=%s has role %s", actorID, actor.Role)
		return ErrAccessDenied
	}
	return nil
}

func mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, scheduleRepo.ErrStoreUnavailable),
		errors.Is(err, txmanager.ErrBeginTx),
		errors.Is(err, txmanager.ErrCommitTx):
		return fmt.Errorf("%w: %s - %v", ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}
