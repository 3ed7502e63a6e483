package userservice

import "github.com/m04kA/SMC-ConsultationService/internal/domain"

// User модель пользователя из UserService
type User struct {
	ID          string `json:"id"`
	Role        string `json:"role"` // client, specialist, admin
	DisplayName string `json:"display_name"`
}

// ToDomain конвертирует ответ сервиса в доменную модель
func (u *User) ToDomain() *domain.User {
	return &domain.User{
		ID:          u.ID,
		Role:        domain.Role(u.Role),
		DisplayName: u.DisplayName,
	}
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
