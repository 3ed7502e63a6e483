package domain

// Role роль пользователя, выдаётся сервисом пользователей
type Role string

const (
	RoleClient     Role = "client"
	RoleSpecialist Role = "specialist"
	RoleAdmin      Role = "admin"
	// RoleSystem действие инициировано самим сервисом (например, компенсация)
	RoleSystem Role = "system"
)

func (r Role) IsStaff() bool {
	return r == RoleSpecialist || r == RoleAdmin
}

// User профиль пользователя
type User struct {
	ID          string
	Role        Role
	DisplayName string
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsSpecialist() bool {
	return u.Role == RoleSpecialist
}
