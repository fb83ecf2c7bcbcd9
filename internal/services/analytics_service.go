package services

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/database"
	"github.com/yukikurage/agency-hub/internal/models"
	"github.com/yukikurage/agency-hub/internal/policy"
	"github.com/yukikurage/agency-hub/internal/repository"
)

// AnalyticsService builds the owner reports. Every report recomputes from source rows.
type AnalyticsService struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsService(repo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

type OverviewTotals struct {
	Revenue        decimal.Decimal `json:"revenue"`
	Projects       int64           `json:"projects"`
	Clients        int64           `json:"clients"`
	Tasks          int64           `json:"tasks"`
	CompletionRate float64         `json:"completionRate"`
}

type TaskStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Overdue   int64 `json:"overdue"`
}

type Overview struct {
	Totals           OverviewTotals           `json:"totals"`
	ProjectsByStatus []repository.StatusCount `json:"projectsByStatus"`
	TaskStats        TaskStats                `json:"taskStats"`
	MonthlyRevenue   []repository.MonthTotal  `json:"monthlyRevenue"`
}

type RevenueReport struct {
	ByStatus      []repository.StatusTotal `json:"byStatus"`
	TopClients    []repository.ClientTotal `json:"topClients"`
	ByMonth       []repository.MonthTotal  `json:"byMonth"`
	AverageAmount decimal.Decimal          `json:"averageAmount"`
}

type DeadlineStatus struct {
	Overdue  int64 `json:"overdue"`
	Upcoming int64 `json:"upcoming"`
}

type ProjectsReport struct {
	ByStatus       []repository.StatusCount `json:"byStatus"`
	DeadlineStatus DeadlineStatus           `json:"deadlineStatus"`
	Budget         repository.BudgetStats   `json:"budget"`
	TopClients     []repository.ClientTotal `json:"topClients"`
}

type TasksReport struct {
	ByStatus       []repository.StatusCount  `json:"byStatus"`
	ByPriority     []repository.StatusCount  `json:"byPriority"`
	Overdue        int64                     `json:"overdue"`
	CompletionRate float64                   `json:"completionRate"`
	TopProjects    []repository.ProjectCount `json:"topProjects"`
}

type ClientsReport struct {
	ByStatus    []repository.StatusCount `json:"byStatus"`
	TopClients  []repository.ClientTotal `json:"topClients"`
	Acquisition []repository.MonthTotal  `json:"acquisition"`
}

type TeamReport struct {
	TasksPerMember     []repository.AssigneeCount `json:"tasksPerMember"`
	CompletedPerMember []repository.AssigneeCount `json:"completedPerMember"`
	Workload           []repository.AssigneeCount `json:"workload"`
}

func (s *AnalyticsService) Overview(p policy.Principal, dr database.DateRange) (*Overview, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	out := &Overview{}
	if out.Totals.Revenue, err = s.repo.PaidRevenue(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.Totals.Projects, err = s.repo.Count(&models.Project{}, agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.Totals.Clients, err = s.repo.Count(&models.Client{}, agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}

	byStatus, err := s.repo.TasksByStatus(agencyID, dr)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	total, done := taskTotals(byStatus)
	out.Totals.Tasks = total
	out.Totals.CompletionRate = completionRate(done, total)
	out.TaskStats.Total = total
	out.TaskStats.Completed = done

	now := s.now().UTC()
	if out.TaskStats.Overdue, err = s.repo.OverdueTasks(agencyID, now, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.ProjectsByStatus, err = s.repo.ProjectsByStatus(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.MonthlyRevenue, err = s.repo.RevenueByMonth(agencyID, trendRange(now, dr)); err != nil {
		return nil, wrapAnalytics(err)
	}
	return out, nil
}

func (s *AnalyticsService) Revenue(p policy.Principal, dr database.DateRange) (*RevenueReport, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	out := &RevenueReport{}
	if out.ByStatus, err = s.repo.RevenueByStatus(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.TopClients, err = s.repo.TopClientsByRevenue(agencyID, dr, constants.AnalyticsTopN); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.ByMonth, err = s.repo.RevenueByMonth(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.AverageAmount, err = s.repo.AverageInvoice(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	return out, nil
}

func (s *AnalyticsService) Projects(p policy.Principal, dr database.DateRange) (*ProjectsReport, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	out := &ProjectsReport{}
	if out.ByStatus, err = s.repo.ProjectsByStatus(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	now := s.now().UTC()
	overdue, upcoming, err := s.repo.ProjectDeadlines(agencyID, now, now.Add(constants.UpcomingDeadlineWindow))
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	out.DeadlineStatus = DeadlineStatus{Overdue: overdue, Upcoming: upcoming}
	if out.Budget, err = s.repo.ProjectBudget(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	out.Budget.AvgBudget = out.Budget.AvgBudget.Round(2)
	if out.TopClients, err = s.repo.TopClientsByProjects(agencyID, dr, constants.AnalyticsTopN); err != nil {
		return nil, wrapAnalytics(err)
	}
	return out, nil
}

func (s *AnalyticsService) Tasks(p policy.Principal, dr database.DateRange) (*TasksReport, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	out := &TasksReport{}
	if out.ByStatus, err = s.repo.TasksByStatus(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	total, done := taskTotals(out.ByStatus)
	out.CompletionRate = completionRate(done, total)
	if out.ByPriority, err = s.repo.TasksByPriority(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.Overdue, err = s.repo.OverdueTasks(agencyID, s.now().UTC(), dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.TopProjects, err = s.repo.TopProjectsByTasks(agencyID, dr, constants.AnalyticsTopN); err != nil {
		return nil, wrapAnalytics(err)
	}
	return out, nil
}

func (s *AnalyticsService) Clients(p policy.Principal, dr database.DateRange) (*ClientsReport, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	out := &ClientsReport{}
	if out.ByStatus, err = s.repo.ClientsByStatus(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.TopClients, err = s.repo.TopClientsByRevenue(agencyID, dr, constants.AnalyticsTopN); err != nil {
		return nil, wrapAnalytics(err)
	}
	if out.Acquisition, err = s.repo.ClientAcquisition(agencyID, dr); err != nil {
		return nil, wrapAnalytics(err)
	}
	return out, nil
}

func (s *AnalyticsService) Team(p policy.Principal, dr database.DateRange) (*TeamReport, error) {
	agencyID, err := requireAgency(p)
	if err != nil {
		return nil, err
	}

	out := &TeamReport{}
	if out.TasksPerMember, err = s.repo.TasksPerAssignee(agencyID, dr, nil); err != nil {
		return nil, wrapAnalytics(err)
	}
	done := []models.TaskStatus{models.TaskStatusDone}
	if out.CompletedPerMember, err = s.repo.TasksPerAssignee(agencyID, dr, done); err != nil {
		return nil, wrapAnalytics(err)
	}
	open := []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress}
	if out.Workload, err = s.repo.TasksPerAssignee(agencyID, dr, open); err != nil {
		return nil, wrapAnalytics(err)
	}
	return out, nil
}

func taskTotals(byStatus []repository.StatusCount) (total, done int64) {
	for _, row := range byStatus {
		total += row.Count
		if row.Status == string(models.TaskStatusDone) {
			done += row.Count
		}
	}
	return total, done
}

// completionRate is done/total as a percentage with one decimal place.
func completionRate(done, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*1000) / 10
}

// trendRange narrows dr to the first day of the month RevenueTrendMonths-1 months before now.
func trendRange(now time.Time, dr database.DateRange) database.DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(constants.RevenueTrendMonths - 1), 0)
	if dr.Start == nil || dr.Start.Before(start) {
		dr.Start = &start
	}
	return dr
}

func wrapAnalytics(err error) error {
	return fmt.Errorf("failed to compute analytics: %w", err)
}
