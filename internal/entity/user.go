package entity

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID           int        `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Никогда не отправляем пароль
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskStats - сводка по задачам сотрудника для дашборда
type TaskStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Ongoing        int     `json:"ongoing"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`
}

type UserWithStats struct {
	User
	TaskStats TaskStats `json:"task_stats"`
}

type UserProfile struct {
	User
	Tasks []Task    `json:"tasks"`
	Stats TaskStats `json:"stats"`
}

// Регистрация
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required, min=1, max=255"`
	LastName  string `json:"last_name" validate:"required, min=1, max=255"`
	Email     string `json:"email" validate:"required, email"`
	Password  string `json:"password" validate:"required, min=8, max=255"`
	Role      Role   `json:"role"`
}

// Логин
type LoginRequest struct {
	Email    string `json:"email" validate:"required, email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

// JWT Claims
type JWTClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
