package templates

import (
	"context"

	"github.com/m04kA/SMC-ConsultationService/internal/domain"
)

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	GetByTrack(ctx context.Context, track domain.Track) (*domain.ScheduleTemplate, error)
	Replace(ctx context.Context, tpl *domain.ScheduleTemplate) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
