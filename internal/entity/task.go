package entity

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusOnHold     TaskStatus = "on_hold"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PendingStatus - запрошенная, но еще не одобренная смена статуса.
// На задаче одновременно живет максимум один такой запрос.
type PendingStatus struct {
	RequestedStatus TaskStatus `json:"requested_status"`
	RequestedBy     int        `json:"requested_by"`
	RequestedByName string     `json:"requested_by_name,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
}

type Task struct {
	ID             int            `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Priority       TaskPriority   `json:"priority"`
	Status         TaskStatus     `json:"status"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedBy      int            `json:"created_by"`
	CreatedByName  string         `json:"created_by_name,omitempty"`
	AssignedTo     int            `json:"assigned_to"`
	AssignedToName string         `json:"assigned_to_name,omitempty"`
	PendingStatus  *PendingStatus `json:"pending_status,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// валидация
type CreateTaskRequest struct {
	Title       string       `json:"title" validate:"required, min=1, max=255"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority" validate:"oneof=low medium high"`
	Status      TaskStatus   `json:"status" validate:"oneof=pending in_progress completed on_hold"`
	StartDate   *time.Time   `json:"start_date"`
	DueDate     *time.Time   `json:"due_date"`
}

// UpdateTaskRequest - частичное обновление, nil значит "поле не трогаем"
type UpdateTaskRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Priority    *TaskPriority `json:"priority"`
	Status      *TaskStatus   `json:"status"`
	StartDate   *time.Time    `json:"start_date"`
	DueDate     *time.Time    `json:"due_date"`
	AssignedTo  *int          `json:"assigned_to"`
}
