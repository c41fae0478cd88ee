package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staffdocs/backend/internal/models"
	"gorm.io/gorm"
)

type TaskService struct {
	DB     *gorm.DB
	Notify *NotificationService
}

func NewTaskService(db *gorm.DB, notify *NotificationService) *TaskService {
	return &TaskService{DB: db, Notify: notify}
}

type CreateTaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	FolderID     *uuid.UUID
	AssignedToID *uuid.UUID
}

func (s *TaskService) Create(user *models.User, tenantID uuid.UUID, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, ErrInvalidName
	}
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	if in.AssignedToID != nil {
		var assignee models.User
		if err := s.DB.First(&assignee, "id = ? AND tenant_id = ?", *in.AssignedToID, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	task := models.Task{
		TenantID:     tenantID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       models.TaskPending,
		DueDate:      in.DueDate,
		FolderID:     in.FolderID,
		AssignedToID: in.AssignedToID,
		CreatedByID:  user.ID,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}

	if in.AssignedToID != nil && *in.AssignedToID != user.ID && s.Notify != nil {
		s.Notify.Push(tenantID, *in.AssignedToID, models.NotificationTaskAssigned,
			fmt.Sprintf("You were assigned the task %q", in.Title))
	}
	return &task, nil
}

func (s *TaskService) Get(user *models.User, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.MemberOf(task.TenantID) {
		return nil, ErrNotFound
	}
	return &task, nil
}

func (s *TaskService) List(user *models.User, tenantID uuid.UUID, status models.TaskStatus) ([]models.Task, error) {
	if !user.MemberOf(tenantID) {
		return nil, ErrNotFound
	}

	query := s.DB.Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus may be done by the assignee, the creator or management.
func (s *TaskService) UpdateStatus(user *models.User, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidName
	}

	task, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	allowed := task.CreatedByID == user.ID ||
		(task.AssignedToID != nil && *task.AssignedToID == user.ID) ||
		user.HasManagementRole()
	if !allowed {
		return nil, ErrUnauthorized
	}

	task.Status = status
	if err := s.DB.Model(task).Update("status", status).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(user *models.User, id uuid.UUID) error {
	task, err := s.Get(user, id)
	if err != nil {
		return err
	}
	if task.CreatedByID != user.ID && !user.HasManagementRole() {
		return ErrUnauthorized
	}
	return s.DB.Delete(task).Error
}
