package services

import (
	"math"
	"sort"
	"time"

	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/models"
)

type CapacityUser struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpcomingDeadline struct {
	TaskID      uint64              `json:"taskId"`
	Title       string              `json:"title"`
	DueDate     time.Time           `json:"dueDate"`
	Priority    models.TaskPriority `json:"priority"`
	ProjectName string              `json:"projectName"`
}

// MemberCapacity is the workload summary of one assignee.
type MemberCapacity struct {
	User               CapacityUser       `json:"user"`
	TotalTasks         int                `json:"totalTasks"`
	ActiveTasks        int                `json:"activeTasks"`
	CompletedTasks     int                `json:"completedTasks"`
	HighPriorityTasks  int                `json:"highPriorityTasks"`
	CapacityPercentage float64            `json:"capacityPercentage"`
	UpcomingDeadlines  []UpcomingDeadline `json:"upcomingDeadlines"`
}

// CapacityPercentage maps active tasks onto a 0-100 scale where
// FullCapacityTasks active tasks is a full workload.
func CapacityPercentage(activeTasks int) float64 {
	return math.Min(100, float64(activeTasks)/constants.FullCapacityTasks*100)
}

// BuildCapacityReport groups tasks by assignee. Tasks must carry their
// Assignments with User, and Project for deadline labels.
func BuildCapacityReport(tasks []models.Task, now time.Time) []MemberCapacity {
	byUser := make(map[uint64]*MemberCapacity)
	seen := make(map[uint64]map[uint64]bool)
	order := make([]uint64, 0)

	for _, task := range tasks {
		for _, assignment := range task.Assignments {
			if assignment.UserID == 0 {
				continue
			}

			entry, ok := byUser[assignment.UserID]
			if !ok {
				entry = &MemberCapacity{
					User: CapacityUser{
						ID:    assignment.UserID,
						Name:  assignment.User.Name,
						Email: assignment.User.Email,
					},
					UpcomingDeadlines: []UpcomingDeadline{},
				}
				byUser[assignment.UserID] = entry
				seen[assignment.UserID] = make(map[uint64]bool)
				order = append(order, assignment.UserID)
			}

			entry.TotalTasks++
			if task.Status == models.TaskStatusDone {
				entry.CompletedTasks++
			} else {
				entry.ActiveTasks++
			}
			if task.Priority == models.TaskPriorityHigh {
				entry.HighPriorityTasks++
			}

			if task.DueDate == nil || task.Status == models.TaskStatusDone || seen[assignment.UserID][task.ID] {
				continue
			}
			days := math.Ceil(task.DueDate.Sub(now).Hours() / 24)
			if days >= 0 && days <= constants.DeadlineHorizonDay {
				seen[assignment.UserID][task.ID] = true
				entry.UpcomingDeadlines = append(entry.UpcomingDeadlines, UpcomingDeadline{
					TaskID:      task.ID,
					Title:       task.Title,
					DueDate:     *task.DueDate,
					Priority:    task.Priority,
					ProjectName: task.Project.Name,
				})
			}
		}
	}

	report := make([]MemberCapacity, 0, len(order))
	for _, userID := range order {
		entry := byUser[userID]
		entry.CapacityPercentage = CapacityPercentage(entry.ActiveTasks)
		sort.SliceStable(entry.UpcomingDeadlines, func(i, j int) bool {
			return entry.UpcomingDeadlines[i].DueDate.Before(entry.UpcomingDeadlines[j].DueDate)
		})
		report = append(report, *entry)
	}
	return report
}
