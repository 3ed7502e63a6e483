package schedule

import (
	"errors"

	"github.com/m04kA/SMC-ConsultationService/pkg/pgerr"
)

var (
	// ErrTemplateNotFound шаблон направления ещё не создан
	ErrTemplateNotFound = errors.New("schedule.repository: template not found")

	// ErrSlotNotFound слот с указанным ID не принадлежит направлению
	ErrSlotNotFound = errors.New("schedule.repository: slot definition not found")

	// ErrDuplicateSlot нарушена уникальность (weekday, start_time) среди активных слотов
	ErrDuplicateSlot = errors.New("schedule.repository: duplicate active slot")

	// ErrStoreUnavailable база недоступна
	ErrStoreUnavailable = errors.New("schedule.repository: store unavailable")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)

const uniqueActiveSlotIndex = "uq_time_slot_active"

func execErr(err error) error {
	switch {
	case pgerr.IsUnavailable(err):
		return ErrStoreUnavailable
	case pgerr.IsUniqueViolation(err, uniqueActiveSlotIndex):
		return ErrDuplicateSlot
	default:
		return ErrExecQuery
	}
}
