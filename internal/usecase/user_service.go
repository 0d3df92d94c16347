package usecase

import (
	"context"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/repository"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/workflow"
)

type UserService struct {
	userRepo         repository.IUserRepository
	taskRepo         repository.ITaskRepository
	refreshTokenRepo repository.IRefreshTokenRepository
}

func NewUserService(
	userRepo repository.IUserRepository,
	taskRepo repository.ITaskRepository,
	refreshTokenRepo repository.IRefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		taskRepo:         taskRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// GetProfile - профиль пользователя с его задачами и сводкой по статусам
func (s *UserService) GetProfile(ctx context.Context, userID int) (*entity.UserProfile, error) {
	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	tasks, err := s.taskRepo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := entity.TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case entity.StatusCompleted:
			stats.Completed++
		case entity.StatusInProgress:
			stats.Ongoing++
		case entity.StatusPending:
			stats.Pending++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return &entity.UserProfile{
		User:  *user,
		Tasks: tasks,
		Stats: stats,
	}, nil
}

// ListWithStats - все пользователи со сводкой по задачам (экран Employees)
func (s *UserService) ListWithStats(ctx context.Context) ([]entity.UserWithStats, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]entity.UserWithStats, 0, len(users))
	for _, user := range users {
		stats, err := s.taskRepo.StatsByAssignee(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, entity.UserWithStats{
			User:      user,
			TaskStats: *stats,
		})
	}

	return result, nil
}

// UpdateUser - профиль правит сам пользователь или админ
func (s *UserService) UpdateUser(ctx context.Context, userID int, p workflow.Principal, req *entity.UpdateUserRequest) (*entity.User, error) {
	if !p.IsAdmin() && p.UserID != userID {
		return nil, entity.ErrForbidden
	}

	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil && *req.FirstName != "" {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil && *req.LastName != "" {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil && *req.Email != "" {
		// email уникальный, проверяем что не занят другим
		existing, err := s.userRepo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, entity.ErrEmailTaken
		}
		updates["email"] = *req.Email
	}

	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	return s.userRepo.Update(ctx, userID, updates)
}

// DeleteUser - удаление аккаунта, сам пользователь или админ.
//
// Каскад по задачам: админ сносит все задачи сотрудника; сам сотрудник не
// может удалиться пока на нем висят незавершенные задачи, а его завершенные
// задачи зачищаются.
func (s *UserService) DeleteUser(ctx context.Context, userID int, p workflow.Principal) error {
	if !p.IsAdmin() && p.UserID != userID {
		return entity.ErrForbidden
	}

	user, err := s.userRepo.GetById(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return entity.ErrUserNotFound
	}

	if p.IsAdmin() {
		if err := s.taskRepo.DeleteByAssignee(ctx, userID, ""); err != nil {
			return err
		}
	} else {
		stats, err := s.taskRepo.StatsByAssignee(ctx, userID)
		if err != nil {
			return err
		}
		if stats.Total > stats.Completed {
			return entity.ErrActiveTasks
		}
		if err := s.taskRepo.DeleteByAssignee(ctx, userID, entity.StatusCompleted); err != nil {
			return err
		}
	}

	// Отзываем токены до удаления пользователя
	if err := s.refreshTokenRepo.RevokeAll(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}
