package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskReadOnly           = errors.New("clients have read-only access to tasks")
	ErrProjectAccessDenied    = errors.New("unauthorized project access")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidTaskStatus      = errors.New("status must be one of todo, in-progress, review, done")
	ErrInvalidTaskPriority    = errors.New("priority must be one of low, medium, high")
	ErrInvalidTaskAssignee    = errors.New("one or more users do not exist or are not members of the agency")
	ErrCommentRequired        = errors.New("comment content is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

var taskDetail = []string{"Project", "Assignments", "Assignments.User", "Comments", "Comments.Author"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
	aiService     *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, notifications *NotificationService, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		notifications: notifications,
		aiService:     aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID *uint64
	Status    *models.TaskStatus
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	ProjectID   uint64
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssignedTo  []uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	AssignedTo   []uint64
}

// ListTasks returns the tasks visible to the principal
func (s *TaskService) ListTasks(p policy.Principal, input ListTasksInput) ([]models.Task, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		Scope:     scope.Tasks,
		ProjectID: input.ProjectID,
		Status:    input.Status,
		Preload:   []string{"Project", "Assignments", "Assignments.User"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task with related data when it is visible to the principal
func (s *TaskService) GetTask(p policy.Principal, taskID uint64) (*models.Task, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(taskID, scope.Tasks, taskDetail...)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a task in one of the agency's projects and notifies each assignee
func (s *TaskService) CreateTask(ctx context.Context, p policy.Principal, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.FindByID(input.ProjectID, scope.Projects); err != nil {
		if isNotFound(err) {
			return nil, ErrProjectAccessDenied
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	assignees := uniqueUint64(input.AssignedTo)
	if err := s.ensureAssignable(p, assignees); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		ProjectID:   input.ProjectID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task, assignees); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	for _, userID := range assignees {
		s.notifyAssigned(ctx, p, task, userID)
	}

	return s.GetTask(p, task.ID)
}

// UpdateTask applies changes allowed for the principal's role.
// Members may only move the status; clients cannot update at all.
func (s *TaskService) UpdateTask(ctx context.Context, p policy.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(p, taskID)
	if err != nil {
		return nil, err
	}

	if p.IsClient() {
		return nil, ErrTaskReadOnly
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	previous := task.AssigneeIDs()
	var assignees []uint64

	if p.IsMember() {
		if input.Status != nil {
			task.Status = *input.Status
		}
	} else {
		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return nil, ErrTitleEmpty
			}
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Priority != nil {
			if !input.Priority.Valid() {
				return nil, ErrInvalidTaskPriority
			}
			task.Priority = *input.Priority
		}
		if input.ClearDueDate {
			task.DueDate = nil
		} else if input.DueDate != nil {
			task.DueDate = input.DueDate
		}
		if input.AssignedTo != nil {
			assignees = uniqueUint64(input.AssignedTo)
			if err := s.ensureAssignable(p, assignees); err != nil {
				return nil, err
			}
		}
	}

	if err := s.taskRepo.Update(task, assignees); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	current := previous
	if assignees != nil {
		current = assignees
	}
	for _, userID := range current {
		switch {
		case userID == p.UserID:
			continue
		case !containsUint64(previous, userID):
			s.notifyAssigned(ctx, p, task, userID)
		default:
			s.notifications.Notify(ctx, NotifyInput{
				RecipientID: userID,
				SenderID:    senderOf(p),
				Type:        models.NotificationTaskUpdated,
				Title:       "Task Updated",
				Message:     fmt.Sprintf("Task %q has been updated.", task.Title),
				Entity:      taskEntity(task.ID),
			})
		}
	}

	return s.GetTask(p, task.ID)
}

// DeleteTask removes a task visible to the principal
func (s *TaskService) DeleteTask(p policy.Principal, taskID uint64) error {
	task, err := s.GetTask(p, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AddComment appends a comment and notifies the assignees other than the author
func (s *TaskService) AddComment(ctx context.Context, p policy.Principal, taskID uint64, content string) (*models.TaskComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentRequired
	}

	task, err := s.GetTask(p, taskID)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByID(p.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	comment := &models.TaskComment{
		TaskID:   task.ID,
		AuthorID: author.ID,
		Content:  content,
	}
	if err := s.taskRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	comment.Author = *author

	for _, userID := range task.AssigneeIDs() {
		if userID == p.UserID {
			continue
		}
		s.notifications.Notify(ctx, NotifyInput{
			RecipientID: userID,
			SenderID:    senderOf(p),
			Type:        models.NotificationTaskUpdated,
			Title:       "New Comment on Task",
			Message:     fmt.Sprintf("%s commented on task: %s", author.Name, task.Title),
			Entity:      taskEntity(task.ID),
		})
	}

	return comment, nil
}

// Capacity loads every task of the agency and builds the workload report
func (s *TaskService) Capacity(p policy.Principal, now time.Time) ([]MemberCapacity, error) {
	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		Scope:   scope.Tasks,
		Preload: []string{"Project", "Assignments", "Assignments.User"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	return BuildCapacityReport(tasks, now), nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	ProjectID uint64
}

// GenerateTasks uses AI to draft tasks from text; drafts are not persisted
func (s *TaskService) GenerateTasks(ctx context.Context, p policy.Principal, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	scope, err := scopeFor(p)
	if err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.FindByID(input.ProjectID, scope.Projects); err != nil {
		if isNotFound(err) {
			return nil, ErrProjectAccessDenied
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}
		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.TaskPriorityMedium
		}
		aiTask.ProjectID = input.ProjectID
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// ensureAssignable verifies every user belongs to the principal's agency
func (s *TaskService) ensureAssignable(p policy.Principal, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	agencyID, err := requireAgency(p)
	if err != nil {
		return err
	}

	count, err := s.userRepo.CountInAgency(userIDs, agencyID)
	if err != nil {
		return fmt.Errorf("failed to verify users: %w", err)
	}
	if int(count) != len(userIDs) {
		return ErrInvalidTaskAssignee
	}
	return nil
}

func (s *TaskService) notifyAssigned(ctx context.Context, p policy.Principal, task *models.Task, userID uint64) {
	s.notifications.Notify(ctx, NotifyInput{
		RecipientID: userID,
		SenderID:    senderOf(p),
		Type:        models.NotificationTaskAssigned,
		Title:       "New Task Assigned",
		Message:     fmt.Sprintf("You have been assigned a new task: %s", task.Title),
		Entity:      taskEntity(task.ID),
	})
}

func taskEntity(id uint64) models.RelatedEntity {
	return models.RelatedEntity{EntityType: models.EntityTask, EntityID: ptr(id)}
}

func containsUint64(values []uint64, v uint64) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
