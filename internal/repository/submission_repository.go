package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/yukikurage/hr-task-review-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const mysqlDuplicateEntry = 1062

// GormSubmissionRepository is a GORM implementation of SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// isDuplicateKey recognises unique-constraint violations from every supported
// driver, including connections opened without error translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// CreateAndAdvanceTask inserts the submission and sets the task status in one transaction
func (r *GormSubmissionRepository) CreateAndAdvanceTask(submission *models.TaskSubmission, nextStatus models.TaskStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(submission).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateSubmission
			}
			return err
		}

		return tx.Model(&models.Task{}).
			Where("id = ?", submission.TaskID).
			Update("status", nextStatus).Error
	})
}

// ApplyReview writes the review fields only while the submission is still
// pending, so concurrent reviews cannot both succeed.
func (r *GormSubmissionRepository) ApplyReview(submission *models.TaskSubmission, taskStatus *models.TaskStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TaskSubmission{}).
			Where("id = ? AND status = ?", submission.ID, models.SubmissionStatusPendingReview).
			Updates(map[string]interface{}{
				"status":         submission.Status,
				"base_points":    submission.BasePoints,
				"quality_points": submission.QualityPoints,
				"bonus_points":   submission.BonusPoints,
				"remarks":        submission.Remarks,
				"reviewed_by":    submission.ReviewedBy,
				"reviewed_at":    submission.ReviewedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update submission: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrSubmissionAlreadyReviewed
		}

		if taskStatus == nil {
			return nil
		}
		return tx.Model(&models.Task{}).
			Where("id = ?", submission.TaskID).
			Update("status", *taskStatus).Error
	})
}

// FindByID finds a submission with its task preloaded
func (r *GormSubmissionRepository) FindByID(id uint64) (*models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.Preload("Task").First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *GormSubmissionRepository) inWorkspace(workspaceID uint64) *gorm.DB {
	return r.db.Model(&models.TaskSubmission{}).
		Joins("JOIN tasks ON tasks.id = task_submissions.task_id AND tasks.deleted_at IS NULL").
		Where("tasks.workspace_id = ?", workspaceID)
}

// ListPending lists pending submissions in a workspace, oldest first
func (r *GormSubmissionRepository) ListPending(workspaceID uint64) ([]models.TaskSubmission, error) {
	var submissions []models.TaskSubmission
	if err := r.inWorkspace(workspaceID).
		Where("task_submissions.status = ?", models.SubmissionStatusPendingReview).
		Preload("Task").
		Order("task_submissions.submitted_at ASC").
		Order("task_submissions.id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListRecentReviewed lists a user's reviewed submissions by submission time, newest first
func (r *GormSubmissionRepository) ListRecentReviewed(workspaceID, userID uint64, limit int) ([]models.TaskSubmission, error) {
	var submissions []models.TaskSubmission
	if err := r.inWorkspace(workspaceID).
		Where("task_submissions.user_id = ? AND task_submissions.status IN ?", userID,
			[]models.SubmissionStatus{models.SubmissionStatusApproved, models.SubmissionStatusRejected}).
		Preload("Task").
		Order("task_submissions.submitted_at DESC").
		Order("task_submissions.id DESC").
		Limit(limit).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
