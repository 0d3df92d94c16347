package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/usecase"
)

type TaskHandler struct {
	taskService *usecase.TaskService
}

func NewTaskHandler(taskService *usecase.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch err {
	case entity.ErrTaskNotFound, entity.ErrUserNotFound:
		http.Error(w, err.Error(), http.StatusNotFound) // 404
	case entity.ErrForbidden:
		http.Error(w, "Access denied", http.StatusForbidden) // 403
	case entity.ErrInvalidTaskData, entity.ErrNoFieldsToUpdate, entity.ErrNoPendingStatus:
		http.Error(w, err.Error(), http.StatusBadRequest) // 400
	default:
		// детали персистентных ошибок наружу не отдаем
		http.Error(w, "Internal server error", http.StatusInternalServerError) // 500
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// создаем новую задачу, исполнитель - сам автор
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req, p)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid task Id", http.StatusBadRequest)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskId)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := entity.TaskStatus(r.URL.Query().Get("status"))

	tasks, err := h.taskService.ListTasks(r.Context(), status)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid task Id", http.StatusBadRequest)
		return
	}

	var req entity.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskId, p, &req)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid task Id", http.StatusBadRequest)
		return
	}

	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskId, p); err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task removed"})
}

// GetTaskAudit - аудит-трейл задачи (роут под RequireAdmin)
func (h *TaskHandler) GetTaskAudit(w http.ResponseWriter, r *http.Request) {
	taskId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid task Id", http.StatusBadRequest)
		return
	}

	audits, err := h.taskService.GetTaskAudit(r.Context(), taskId)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, audits)
}

// ApproveStatus - одобрение pending-запроса (роут под RequireAdmin)
func (h *TaskHandler) ApproveStatus(w http.ResponseWriter, r *http.Request) {
	taskId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid task Id", http.StatusBadRequest)
		return
	}

	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	task, err := h.taskService.ApproveStatus(r.Context(), taskId, p)
	if err != nil {
		writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}
