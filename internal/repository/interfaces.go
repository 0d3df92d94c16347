package repository

import (
	"context"
	"time"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
)

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.CreateTaskRequest, creatorID int) (*entity.Task, error)
	GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error)
	ListByAssignee(ctx context.Context, userID int) ([]entity.Task, error)
	DeleteByAssignee(ctx context.Context, userID int, status entity.TaskStatus) error
	StatsByAssignee(ctx context.Context, userID int) (*entity.TaskStats, error)
}

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	Create(ctx context.Context, req *entity.RegisterRequest, passwordHash string) (*entity.User, error)
	GetById(ctx context.Context, id int) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Delete(ctx context.Context, id int) error
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByTaskId(ctx context.Context, taskId int) ([]entity.TaskAudit, error)
}

// IRefreshTokenRepository - интерфейс для RefreshTokenRepository
type IRefreshTokenRepository interface {
	Save(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAll(ctx context.Context, userID int) error
}
