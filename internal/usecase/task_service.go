package usecase

import (
	"context"
	"log"
	"time"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/repository"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/workflow"
)

// RabbitMQPublisher интерфейс для публикации в RabbitMQ
type RabbitMQPublisher interface {
	PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error
}

type TaskService struct {
	taskRepo  repository.ITaskRepository
	userRepo  repository.IUserRepository
	auditRepo repository.ITaskAuditRepository
	rabbitMQ  RabbitMQPublisher
}

func NewTaskService(
	taskRepo repository.ITaskRepository,
	userRepo repository.IUserRepository,
	auditRepo repository.ITaskAuditRepository,
	rabbitMQ RabbitMQPublisher,
) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		rabbitMQ:  rabbitMQ,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, req *entity.CreateTaskRequest, p workflow.Principal) (*entity.Task, error) {
	// 1. Проверяем что пользователь существует
	user, err := s.userRepo.GetById(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}

	// 2. Валидация и дефолты
	if req.Title == "" {
		return nil, entity.ErrInvalidTaskData
	}
	if req.Status == "" {
		req.Status = entity.StatusPending
	}
	if req.Priority == "" {
		req.Priority = entity.PriorityMedium
	}
	if !entity.ValidStatus(req.Status) || !entity.ValidPriority(req.Priority) {
		return nil, entity.ErrInvalidTaskData
	}

	// 3. Создаем задачу, исполнитель по умолчанию - сам создатель
	task, err := s.taskRepo.Create(ctx, req, p.UserID)
	if err != nil {
		return nil, err
	}

	// 4. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionCreate, p.UserID, task.ID, nil, task)

	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID int) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	return task, nil
}

// ListTasks - все задачи, свежие сверху; статус - опциональный фильтр
func (s *TaskService) ListTasks(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	if status != "" && !entity.ValidStatus(status) {
		return nil, entity.ErrInvalidTaskData
	}
	return s.taskRepo.List(ctx, status)
}

// UpdateTask - единственная точка записи в статус задачи. Решение
// (применить/припарковать/отказать) принимает workflow.Decide.
func (s *TaskService) UpdateTask(ctx context.Context, taskID int, p workflow.Principal, req *entity.UpdateTaskRequest) (*entity.Task, error) {
	// 1. Получаем текущую задачу
	oldTask, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if oldTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	// 2. Решаем, что из патча применяется
	decision, err := workflow.Decide(p, oldTask, req, time.Now())
	if err != nil {
		return nil, err
	}

	// 3. Обновляем задачу
	updatedTask, err := s.taskRepo.Update(ctx, taskID, decision.Updates)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	// 4. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionUpdate, p.UserID, taskID, oldTask, updatedTask)

	return updatedTask, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID int, p workflow.Principal) error {
	// 1. Получаем задачу (для аудита и проверки прав)
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return entity.ErrTaskNotFound
	}

	// 2. Удалять может админ или создатель
	if !workflow.CanDelete(p, task) {
		return entity.ErrForbidden
	}

	// 3. Удаляем задачу
	err = s.taskRepo.Delete(ctx, taskID)
	if err != nil {
		return err
	}

	// 4. Асинхронно отправляем аудит
	s.sendAuditMessage(entity.ActionDelete, p.UserID, taskID, task, nil)

	return nil
}

// ApproveStatus - коммит pending-запроса, только для админа
func (s *TaskService) ApproveStatus(ctx context.Context, taskID int, p workflow.Principal) (*entity.Task, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	patch, err := workflow.ApprovePatch(p, task, time.Now())
	if err != nil {
		return nil, err
	}

	updatedTask, err := s.taskRepo.Update(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}
	if updatedTask == nil {
		return nil, entity.ErrTaskNotFound
	}

	s.sendAuditMessage(entity.ActionApprove, p.UserID, taskID, task, updatedTask)

	return updatedTask, nil
}

// GetTaskAudit - история изменений задачи, свежие записи сверху.
// Трейл пишется асинхронно, так что последнее действие может еще не доехать.
func (s *TaskService) GetTaskAudit(ctx context.Context, taskID int) ([]entity.TaskAudit, error) {
	task, err := s.taskRepo.GetByTaskId(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	return s.auditRepo.ListByTaskId(ctx, taskID)
}

func taskValues(t *entity.Task) map[string]any {
	values := map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"status":      t.Status,
		"assigned_to": t.AssignedTo,
	}
	if t.PendingStatus != nil {
		values["pending_status"] = t.PendingStatus.RequestedStatus
	}
	return values
}

// Вспомогательный метод для отправки аудита
func (s *TaskService) sendAuditMessage(
	action entity.ActionType,
	userID int,
	taskID int,
	oldTask *entity.Task,
	newTask *entity.Task,
) {
	auditMsg := &entity.AuditMessage{
		Action:    action,
		UserID:    userID,
		EntityID:  taskID,
		Timestamp: time.Now(),
	}

	if oldTask != nil {
		auditMsg.OldValues = taskValues(oldTask)
	}
	if newTask != nil {
		auditMsg.NewValues = taskValues(newTask)
	}

	// Вычисляем изменения
	if oldTask != nil && newTask != nil {
		changes := make(map[string]any)
		for field, newValue := range auditMsg.NewValues {
			oldValue, ok := auditMsg.OldValues[field]
			if !ok || oldValue != newValue {
				changes[field] = map[string]any{"old": oldValue, "new": newValue}
			}
		}
		auditMsg.Changes = changes
	}

	// Асинхронная отправка в RabbitMQ
	go func() {
		if err := s.rabbitMQ.PublishAuditMessage(context.Background(), auditMsg); err != nil {
			log.Printf("❌ Ошибка отправки аудита в RabbitMQ: %v", err)
		}
	}()
}
