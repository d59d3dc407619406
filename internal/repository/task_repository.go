package repository

import (
	"strings"
	"time"

	"github.com/yukikurage/hr-task-review-api/internal/database"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if filter.ScopeUserIDs != nil && len(filter.ScopeUserIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).Scopes(database.InWorkspace("tasks", filter.WorkspaceID))

	// Apply filters
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(tasks.title) LIKE ? OR LOWER(tasks.description) LIKE ?)", pattern, pattern)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assigned_to = ?", *filter.AssigneeID)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.created_by = ?", *filter.CreatorID)
	}
	if filter.AssignedRole != nil {
		query = query.Where("tasks.assigned_role = ?", *filter.AssignedRole)
	}

	switch filter.View {
	case TaskViewAssigned:
		query = query.Where("tasks.assigned_to = ?", filter.ViewerID)
	case TaskViewCreated:
		query = query.Where("tasks.created_by = ?", filter.ViewerID)
	}

	if filter.ScopeUserIDs != nil {
		query = query.Where("(tasks.assigned_to IN ? OR tasks.created_by IN ?)", filter.ScopeUserIDs, filter.ScopeUserIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	if err := listQuery.Preload("Assignee").Preload("Creator").Preload("Submission").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// UpdateStatus sets only the status column
func (r *GormTaskRepository) UpdateStatus(id uint64, status models.TaskStatus) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Update("status", status).Error
}

// Delete removes the submission first, then soft deletes the task
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskSubmission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

type statusCount struct {
	Status models.TaskStatus
	Count  int64
}

// CountByStatus returns task counts per status in a workspace
func (r *GormTaskRepository) CountByStatus(workspaceID uint64) (map[models.TaskStatus]int64, error) {
	var rows []statusCount
	if err := r.db.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("workspace_id = ?", workspaceID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountOverdue counts tasks past their due time that are not done
func (r *GormTaskRepository) CountOverdue(workspaceID uint64, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("workspace_id = ? AND due_at IS NOT NULL AND due_at < ? AND status <> ?",
			workspaceID, now, models.TaskStatusDone).
		Count(&count).Error
	return count, err
}

// ListForPerformance loads tasks created at or after since, with submissions.
// A nil assigneeIDs means every assignee.
func (r *GormTaskRepository) ListForPerformance(workspaceID uint64, since time.Time, assigneeIDs []uint64) ([]models.Task, error) {
	if assigneeIDs != nil && len(assigneeIDs) == 0 {
		return []models.Task{}, nil
	}

	query := r.db.Where("workspace_id = ? AND created_at >= ?", workspaceID, since)
	if assigneeIDs != nil {
		query = query.Where("assigned_to IN ?", assigneeIDs)
	}

	var tasks []models.Task
	if err := query.Preload("Submission").Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
