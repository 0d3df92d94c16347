package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/repository"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/workflow"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc           func(ctx context.Context, task *entity.CreateTaskRequest, creatorID int) (*entity.Task, error)
	GetByTaskIdFunc      func(ctx context.Context, taskId int) (*entity.Task, error)
	UpdateFunc           func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error)
	DeleteFunc           func(ctx context.Context, id int) error
	ListFunc             func(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error)
	ListByAssigneeFunc   func(ctx context.Context, userID int) ([]entity.Task, error)
	DeleteByAssigneeFunc func(ctx context.Context, userID int, status entity.TaskStatus) error
	StatsByAssigneeFunc  func(ctx context.Context, userID int) (*entity.TaskStats, error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest, creatorID int) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task, creatorID)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {
	if m.GetByTaskIdFunc != nil {
		return m.GetByTaskIdFunc(ctx, taskId)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status)
	}
	return nil, nil
}

func (m *MockTaskRepository) ListByAssignee(ctx context.Context, userID int) ([]entity.Task, error) {
	if m.ListByAssigneeFunc != nil {
		return m.ListByAssigneeFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockTaskRepository) DeleteByAssignee(ctx context.Context, userID int, status entity.TaskStatus) error {
	if m.DeleteByAssigneeFunc != nil {
		return m.DeleteByAssigneeFunc(ctx, userID, status)
	}
	return nil
}

func (m *MockTaskRepository) StatsByAssignee(ctx context.Context, userID int) (*entity.TaskStats, error) {
	if m.StatsByAssigneeFunc != nil {
		return m.StatsByAssigneeFunc(ctx, userID)
	}
	return &entity.TaskStats{}, nil
}

// MockUserRepository - мок для IUserRepository
type MockUserRepository struct {
	CreateFunc     func(ctx context.Context, req *entity.RegisterRequest, passwordHash string) (*entity.User, error)
	GetByIdFunc    func(ctx context.Context, id int) (*entity.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	UpdateFunc     func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error)
	ListFunc       func(ctx context.Context) ([]entity.User, error)
	DeleteFunc     func(ctx context.Context, id int) error
}

var _ repository.IUserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, req *entity.RegisterRequest, passwordHash string) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req, passwordHash)
	}
	return nil, nil
}

func (m *MockUserRepository) GetById(ctx context.Context, id int) (*entity.User, error) {
	if m.GetByIdFunc != nil {
		return m.GetByIdFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]entity.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockRefreshTokenRepository - мок для IRefreshTokenRepository
type MockRefreshTokenRepository struct {
	SaveFunc      func(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	GetByHashFunc func(ctx context.Context, tokenHash string) (*repository.RefreshToken, error)
	RevokeFunc    func(ctx context.Context, tokenHash string) error
	RevokeAllFunc func(ctx context.Context, userID int) error
}

var _ repository.IRefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

func (m *MockRefreshTokenRepository) Save(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenHash)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAll(ctx context.Context, userID int) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID)
	}
	return nil
}

// MockTaskAuditRepository - мок для ITaskAuditRepository
type MockTaskAuditRepository struct {
	CreateFunc       func(ctx context.Context, audit *entity.TaskAudit) error
	ListByTaskIdFunc func(ctx context.Context, taskId int) ([]entity.TaskAudit, error)
}

var _ repository.ITaskAuditRepository = (*MockTaskAuditRepository)(nil)

func (m *MockTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, audit)
	}
	return nil
}

func (m *MockTaskAuditRepository) ListByTaskId(ctx context.Context, taskId int) ([]entity.TaskAudit, error) {
	if m.ListByTaskIdFunc != nil {
		return m.ListByTaskIdFunc(ctx, taskId)
	}
	return nil, nil
}

// MockRabbitMQPublisher - мок для RabbitMQPublisher
type MockRabbitMQPublisher struct {
	PublishAuditMessageFunc func(ctx context.Context, message *entity.AuditMessage) error
}

func (m *MockRabbitMQPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	if m.PublishAuditMessageFunc != nil {
		return m.PublishAuditMessageFunc(ctx, message)
	}
	return nil
}

// Fixtures

var (
	adminPrincipal    = workflow.Principal{UserID: 1, Role: entity.RoleAdmin}
	creatorPrincipal  = workflow.Principal{UserID: 2, Role: entity.RoleEmployee}
	assigneePrincipal = workflow.Principal{UserID: 3, Role: entity.RoleEmployee}
	strangerPrincipal = workflow.Principal{UserID: 4, Role: entity.RoleEmployee}
)

func storedTask() *entity.Task {
	return &entity.Task{
		ID:         1,
		Title:      "Prepare onboarding docs",
		Status:     entity.StatusPending,
		Priority:   entity.PriorityMedium,
		CreatedBy:  creatorPrincipal.UserID,
		AssignedTo: assigneePrincipal.UserID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// Tests

func TestCreateTaskSuccess(t *testing.T) {
	ctx := context.Background()
	mockTask := storedTask()

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			if id == creatorPrincipal.UserID {
				return &entity.User{ID: id, FirstName: "Test", LastName: "User"}, nil
			}
			return nil, nil
		},
	}

	var gotCreatorID int
	mockTaskRepo := &MockTaskRepository{
		CreateFunc: func(ctx context.Context, task *entity.CreateTaskRequest, creatorID int) (*entity.Task, error) {
			gotCreatorID = creatorID
			return mockTask, nil
		},
	}

	service := NewTaskService(mockTaskRepo, mockUserRepo, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	req := &entity.CreateTaskRequest{Title: "Prepare onboarding docs"}

	result, err := service.CreateTask(ctx, req, creatorPrincipal)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.ID != mockTask.ID {
		t.Errorf("Expected task ID %d, got %d", mockTask.ID, result.ID)
	}
	if gotCreatorID != creatorPrincipal.UserID {
		t.Errorf("Expected creator %d, got %d", creatorPrincipal.UserID, gotCreatorID)
	}

	// дефолты
	if req.Status != entity.StatusPending {
		t.Errorf("Expected default status %s, got %s", entity.StatusPending, req.Status)
	}
	if req.Priority != entity.PriorityMedium {
		t.Errorf("Expected default priority %s, got %s", entity.PriorityMedium, req.Priority)
	}
}

func TestCreateTaskUserNotFound(t *testing.T) {
	ctx := context.Background()

	mockUserRepo := &MockUserRepository{
		GetByIdFunc: func(ctx context.Context, id int) (*entity.User, error) {
			return nil, nil // User not found
		},
	}

	service := NewTaskService(&MockTaskRepository{}, mockUserRepo, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	req := &entity.CreateTaskRequest{Title: "Test Task"}

	result, err := service.CreateTask(ctx, req, workflow.Principal{UserID: 999, Role: entity.RoleEmployee})
	if err != entity.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil task, got %v", result)
	}
}

func TestUpdateTaskEmployeeStatusDeferred(t *testing.T) {
	ctx := context.Background()
	oldTask := storedTask()

	var gotUpdates map[string]interface{}
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return oldTask, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
			gotUpdates = updates
			updated := storedTask()
			updated.PendingStatus = &entity.PendingStatus{
				RequestedStatus: entity.StatusCompleted,
				RequestedBy:     assigneePrincipal.UserID,
				RequestedAt:     time.Now(),
			}
			return updated, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	status := entity.StatusCompleted
	req := &entity.UpdateTaskRequest{Status: &status}

	result, err := service.UpdateTask(ctx, 1, assigneePrincipal, req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// в хранилище не уходит прямой status, уходит pending-слот
	if _, ok := gotUpdates["status"]; ok {
		t.Error("Expected no status in repo patch for employee")
	}
	if gotUpdates["pending_status"] != entity.StatusCompleted {
		t.Errorf("Expected pending_status %s, got %v", entity.StatusCompleted, gotUpdates["pending_status"])
	}
	if gotUpdates["pending_requested_by"] != assigneePrincipal.UserID {
		t.Errorf("Expected pending_requested_by %d, got %v", assigneePrincipal.UserID, gotUpdates["pending_requested_by"])
	}

	// видимый статус не сдвинулся
	if result.Status != entity.StatusPending {
		t.Errorf("Expected status %s, got %s", entity.StatusPending, result.Status)
	}
	if result.PendingStatus == nil || result.PendingStatus.RequestedStatus != entity.StatusCompleted {
		t.Errorf("Expected pending request for %s, got %+v", entity.StatusCompleted, result.PendingStatus)
	}
}

func TestUpdateTaskAdminStatusDirect(t *testing.T) {
	ctx := context.Background()
	oldTask := storedTask()
	oldTask.PendingStatus = &entity.PendingStatus{
		RequestedStatus: entity.StatusCompleted,
		RequestedBy:     assigneePrincipal.UserID,
		RequestedAt:     time.Now(),
	}

	var gotUpdates map[string]interface{}
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return oldTask, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
			gotUpdates = updates
			updated := storedTask()
			updated.Status = entity.StatusOnHold
			return updated, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	status := entity.StatusOnHold
	req := &entity.UpdateTaskRequest{Status: &status}

	result, err := service.UpdateTask(ctx, 1, adminPrincipal, req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotUpdates["status"] != entity.StatusOnHold {
		t.Errorf("Expected status %s, got %v", entity.StatusOnHold, gotUpdates["status"])
	}
	// висевший pending-запрос сбрасывается
	if value, ok := gotUpdates["pending_status"]; !ok || value != nil {
		t.Errorf("Expected pending_status cleared, got %v (present=%v)", value, ok)
	}
	if result.Status != entity.StatusOnHold {
		t.Errorf("Expected status %s, got %s", entity.StatusOnHold, result.Status)
	}
}

func TestUpdateTaskStrangerForbidden(t *testing.T) {
	ctx := context.Background()

	updateCalled := false
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return storedTask(), nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
			updateCalled = true
			return nil, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	title := "hijacked"
	req := &entity.UpdateTaskRequest{Title: &title}

	_, err := service.UpdateTask(ctx, 1, strangerPrincipal, req)
	if err != entity.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if updateCalled {
		t.Error("Expected no repo write for unauthorized caller")
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	ctx := context.Background()

	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return nil, nil // Task not found
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	title := "New Title"
	req := &entity.UpdateTaskRequest{Title: &title}

	result, err := service.UpdateTask(ctx, 999, adminPrincipal, req)
	if err != entity.ErrTaskNotFound {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil task, got %v", result)
	}
}

func TestApproveStatusSuccess(t *testing.T) {
	ctx := context.Background()
	task := storedTask()
	task.PendingStatus = &entity.PendingStatus{
		RequestedStatus: entity.StatusCompleted,
		RequestedBy:     assigneePrincipal.UserID,
		RequestedAt:     time.Now(),
	}

	var gotUpdates map[string]interface{}
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return task, nil
		},
		UpdateFunc: func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
			gotUpdates = updates
			now := time.Now()
			updated := storedTask()
			updated.Status = entity.StatusCompleted
			updated.CompletedAt = &now
			return updated, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	result, err := service.ApproveStatus(ctx, 1, adminPrincipal)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotUpdates["status"] != entity.StatusCompleted {
		t.Errorf("Expected committed status %s, got %v", entity.StatusCompleted, gotUpdates["status"])
	}
	if value, ok := gotUpdates["pending_status"]; !ok || value != nil {
		t.Errorf("Expected pending_status cleared, got %v (present=%v)", value, ok)
	}
	if _, ok := gotUpdates["completed_at"]; !ok {
		t.Error("Expected completed_at stamp on approval of completed")
	}
	if result.Status != entity.StatusCompleted {
		t.Errorf("Expected status %s, got %s", entity.StatusCompleted, result.Status)
	}
}

func TestApproveStatusNoPending(t *testing.T) {
	ctx := context.Background()

	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return storedTask(), nil // без pending-запроса
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	_, err := service.ApproveStatus(ctx, 1, adminPrincipal)
	if err != entity.ErrNoPendingStatus {
		t.Errorf("Expected ErrNoPendingStatus, got %v", err)
	}
}

func TestApproveStatusNotAdmin(t *testing.T) {
	ctx := context.Background()
	task := storedTask()
	task.PendingStatus = &entity.PendingStatus{RequestedStatus: entity.StatusCompleted}

	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return task, nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	_, err := service.ApproveStatus(ctx, 1, creatorPrincipal)
	if err != entity.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestDeleteTaskAssigneeForbidden(t *testing.T) {
	ctx := context.Background()

	deleteCalled := false
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return storedTask(), nil
		},
		DeleteFunc: func(ctx context.Context, id int) error {
			deleteCalled = true
			return nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	// исполнитель задачу удалить не может, только создатель или админ
	err := service.DeleteTask(ctx, 1, assigneePrincipal)
	if err != entity.ErrForbidden {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if deleteCalled {
		t.Error("Expected no repo delete for assignee")
	}
}

func TestDeleteTaskCreatorSuccess(t *testing.T) {
	ctx := context.Background()

	deleteCalled := false
	mockTaskRepo := &MockTaskRepository{
		GetByTaskIdFunc: func(ctx context.Context, taskId int) (*entity.Task, error) {
			return storedTask(), nil
		},
		DeleteFunc: func(ctx context.Context, id int) error {
			deleteCalled = true
			return nil
		},
	}

	service := NewTaskService(mockTaskRepo, &MockUserRepository{}, &MockTaskAuditRepository{}, &MockRabbitMQPublisher{})

	if err := service.DeleteTask(ctx, 1, creatorPrincipal); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !deleteCalled {
		t.Error("Expected repo delete to be called")
	}
}
