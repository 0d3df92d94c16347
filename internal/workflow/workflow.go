// Package workflow - чистая логика смены статуса задачи: кто может менять
// поля напрямую, чей запрос паркуется на одобрение и как одобрение коммитится.
// Слот pending-запроса один на задачу, повторный запрос молча затирает
// предыдущий (очереди и истории нет).
package workflow

import (
	"time"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
)

// Principal - кто пришел с запросом
type Principal struct {
	UserID int
	Role   entity.Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == entity.RoleAdmin
}

// CanUpdate - обновлять задачу может админ, создатель или исполнитель
func CanUpdate(p Principal, t *entity.Task) bool {
	return p.IsAdmin() || t.CreatedBy == p.UserID || t.AssignedTo == p.UserID
}

// CanDelete - удалять задачу может админ или создатель, исполнителю нельзя
func CanDelete(p Principal, t *entity.Task) bool {
	return p.IsAdmin() || t.CreatedBy == p.UserID
}

// CanApprove - одобрение только для админа
func CanApprove(p Principal) bool {
	return p.IsAdmin()
}

type Outcome string

const (
	// OutcomeApplied - все поля применяются напрямую
	OutcomeApplied Outcome = "applied"
	// OutcomeDeferred - статус припаркован как pending-запрос, остальные поля применены
	OutcomeDeferred Outcome = "deferred"
)

// Decision - патч для хранилища плюс что случилось со статусом
type Decision struct {
	Outcome Outcome
	Updates map[string]interface{}
}

// CompletionStamp - completed_at выводится из перехода, а не размазывается по
// call-site'ам. Возвращает nil для любого статуса кроме completed: при уходе
// из completed старый штамп намеренно остается.
func CompletionStamp(newStatus entity.TaskStatus, now time.Time) *time.Time {
	if newStatus == entity.StatusCompleted {
		return &now
	}
	return nil
}

// Decide - процедура решения по обновлению задачи.
//
// Админ применяет все как есть; если в запросе есть статус, pending-запрос
// сбрасывается. Не-админ (создатель или исполнитель) статус напрямую не меняет:
// запрошенный статус паркуется в pending-слот, остальные поля применяются.
// Запрос статуса, равного текущему, принимается - движок это не проверяет.
func Decide(p Principal, task *entity.Task, req *entity.UpdateTaskRequest, now time.Time) (*Decision, error) {
	if !CanUpdate(p, task) {
		return nil, entity.ErrForbidden
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		if !entity.ValidPriority(*req.Priority) {
			return nil, entity.ErrInvalidTaskData
		}
		updates["priority"] = *req.Priority
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}

	if req.Status == nil {
		if len(updates) == 0 {
			return nil, entity.ErrNoFieldsToUpdate
		}
		return &Decision{Outcome: OutcomeApplied, Updates: updates}, nil
	}

	if !entity.ValidStatus(*req.Status) {
		return nil, entity.ErrInvalidTaskData
	}

	if p.IsAdmin() {
		updates["status"] = *req.Status
		updates["pending_status"] = nil
		updates["pending_requested_by"] = nil
		updates["pending_requested_at"] = nil
		if ts := CompletionStamp(*req.Status, now); ts != nil {
			updates["completed_at"] = *ts
		}
		return &Decision{Outcome: OutcomeApplied, Updates: updates}, nil
	}

	// не-админ: видимый статус не трогаем, последний запрос побеждает
	updates["pending_status"] = *req.Status
	updates["pending_requested_by"] = p.UserID
	updates["pending_requested_at"] = now
	return &Decision{Outcome: OutcomeDeferred, Updates: updates}, nil
}

// ApprovePatch - коммит pending-запроса: статус становится запрошенным,
// слот очищается. Без pending-запроса одобрять нечего.
func ApprovePatch(p Principal, task *entity.Task, now time.Time) (map[string]interface{}, error) {
	if !CanApprove(p) {
		return nil, entity.ErrForbidden
	}
	if task.PendingStatus == nil {
		return nil, entity.ErrNoPendingStatus
	}

	updates := map[string]interface{}{
		"status":               task.PendingStatus.RequestedStatus,
		"pending_status":       nil,
		"pending_requested_by": nil,
		"pending_requested_at": nil,
	}
	if ts := CompletionStamp(task.PendingStatus.RequestedStatus, now); ts != nil {
		updates["completed_at"] = *ts
	}
	return updates, nil
}
