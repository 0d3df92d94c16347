package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

// Имена создателя/исполнителя/запросившего подтягиваем джойном.
// LEFT JOIN: ссылки на пользователей слабые, пользователь мог быть
// уже удален.
const taskColumns = `
	t.id, t.title, t.description, t.priority, t.status,
	t.start_date, t.due_date, t.completed_at,
	t.created_by, t.assigned_to,
	t.pending_status, t.pending_requested_by, t.pending_requested_at,
	t.created_at, t.updated_at,
	cu.first_name || ' ' || cu.last_name,
	au.first_name || ' ' || au.last_name,
	pu.first_name || ' ' || pu.last_name`

const taskJoins = `
	FROM tasks t
	LEFT JOIN users cu ON cu.id = t.created_by
	LEFT JOIN users au ON au.id = t.assigned_to
	LEFT JOIN users pu ON pu.id = t.pending_requested_by`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var task entity.Task
	var pendingStatus *string
	var pendingBy *int
	var pendingAt *time.Time
	var creatorName, assigneeName, requesterName *string

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.StartDate,
		&task.DueDate,
		&task.CompletedAt,
		&task.CreatedBy,
		&task.AssignedTo,
		&pendingStatus,
		&pendingBy,
		&pendingAt,
		&task.CreatedAt,
		&task.UpdatedAt,
		&creatorName,
		&assigneeName,
		&requesterName,
	)
	if err != nil {
		return nil, err
	}

	if creatorName != nil {
		task.CreatedByName = *creatorName
	}
	if assigneeName != nil {
		task.AssignedToName = *assigneeName
	}

	// pending-слот собираем только если он целиком заполнен
	if pendingStatus != nil && pendingBy != nil && pendingAt != nil {
		task.PendingStatus = &entity.PendingStatus{
			RequestedStatus: entity.TaskStatus(*pendingStatus),
			RequestedBy:     *pendingBy,
			RequestedAt:     *pendingAt,
		}
		if requesterName != nil {
			task.PendingStatus.RequestedByName = *requesterName
		}
	}

	return &task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest, creatorID int) (*entity.Task, error) {
	query := `
	INSERT INTO tasks (title, description, priority, status, start_date, due_date, created_by, assigned_to)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	RETURNING id
	`

	var id int
	err := r.db.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.StartDate,
		task.DueDate,
		creatorID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	return r.GetByTaskId(ctx, id)
}

func (r *TaskRepository) GetByTaskId(ctx context.Context, taskId int) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + ` WHERE t.id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskId))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return task, nil
}

// Update - частичное обновление задачи, патч как shallow-merge полей.
// Динамически строим SET часть запроса, updated_at двигается на каждой мутации.
func (r *TaskRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Task, error) {
	setClause := ""
	args := []interface{}{}
	argIndex := 1

	for field, value := range updates {
		if field == "updated_at" {
			continue // не обновляем вручную
		}
		if argIndex > 1 {
			setClause += ", "
		}
		setClause += field + " = $" + strconv.Itoa(argIndex)
		args = append(args, value)
		argIndex++
	}

	if argIndex > 1 {
		setClause += ", updated_at = CURRENT_TIMESTAMP"
	}

	query := `
	UPDATE tasks
	SET ` + setClause + `
	WHERE id = $` + strconv.Itoa(argIndex) + `
	RETURNING id
	`
	args = append(args, id)

	var updatedId int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&updatedId); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return r.GetByTaskId(ctx, updatedId)
}

// Delete - удаление задачи
func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List - все задачи, свежеобновленные сверху, с опциональным фильтром по статусу
func (r *TaskRepository) List(ctx context.Context, status entity.TaskStatus) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins
	args := []interface{}{}

	if status != "" {
		query += ` WHERE t.status = $1`
		args = append(args, status)
	}

	query += ` ORDER BY t.updated_at DESC`

	return r.queryTasks(ctx, query, args...)
}

// ListByAssignee - задачи сотрудника в порядке дедлайнов (для профиля)
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID int) ([]entity.Task, error) {
	query := `SELECT ` + taskColumns + taskJoins + `
	WHERE t.assigned_to = $1
	ORDER BY t.due_date ASC NULLS LAST`

	return r.queryTasks(ctx, query, userID)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]entity.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []entity.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// DeleteByAssignee - зачистка задач сотрудника при удалении аккаунта.
// Пустой статус значит "все задачи".
func (r *TaskRepository) DeleteByAssignee(ctx context.Context, userID int, status entity.TaskStatus) error {
	query := `DELETE FROM tasks WHERE assigned_to = $1`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

// StatsByAssignee - сводка по задачам сотрудника одним запросом
func (r *TaskRepository) StatsByAssignee(ctx context.Context, userID int) (*entity.TaskStats, error) {
	query := `
	SELECT COUNT(*),
	       COUNT(*) FILTER (WHERE status = 'completed'),
	       COUNT(*) FILTER (WHERE status = 'in_progress'),
	       COUNT(*) FILTER (WHERE status = 'pending')
	FROM tasks
	WHERE assigned_to = $1
	`

	var stats entity.TaskStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Completed,
		&stats.Ongoing,
		&stats.Pending,
	)
	if err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}

	return &stats, nil
}
