package dto

import (
	"time"

	"github.com/yukikurage/agency-hub/internal/models"
)

// ProjectSummaryDTO is the project reference embedded in a task
type ProjectSummaryDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	ClientID uint64 `json:"clientId"`
}

// CommentDTO represents one entry of a task's comment thread
type CommentDTO struct {
	ID        uint64         `json:"id"`
	Content   string         `json:"content"`
	Author    UserSummaryDTO `json:"author"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ProjectID   uint64              `json:"projectId"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Project     *ProjectSummaryDTO  `json:"project,omitempty"`
	AssignedTo  []UserSummaryDTO    `json:"assignedTo"`
	Comments    []CommentDTO        `json:"comments,omitempty"`
}

// ToCommentDTO converts a comment model to DTO
func ToCommentDTO(comment models.TaskComment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		Author:    ToUserSummary(comment.Author),
		CreatedAt: comment.CreatedAt,
	}
}

// ToTaskDTO converts a task with its preloaded relations to DTO
func ToTaskDTO(task models.Task) TaskDTO {
	out := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ProjectID:   task.ProjectID,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		AssignedTo:  make([]UserSummaryDTO, 0, len(task.Assignments)),
	}

	if task.Project.ID != 0 {
		out.Project = &ProjectSummaryDTO{
			ID:       task.Project.ID,
			Name:     task.Project.Name,
			ClientID: task.Project.ClientID,
		}
	}

	for _, a := range task.Assignments {
		out.AssignedTo = append(out.AssignedTo, ToUserSummary(a.User))
	}

	if len(task.Comments) > 0 {
		out.Comments = make([]CommentDTO, len(task.Comments))
		for i, comment := range task.Comments {
			out.Comments[i] = ToCommentDTO(comment)
		}
	}

	return out
}

// ToTaskDTOs converts a task list to DTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task)
	}
	return out
}
