package service

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/dates"
	"github.com/geocoder89/taskhub/internal/domain/report"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// ReportService computes metrics live on every call.
type ReportService struct {
	gate    projectGate
	reports ReportStore
	users   UserStore
	now     func() time.Time
}

func NewReportService(reports ReportStore, projects ProjectStore, users UserStore, engine *authz.Engine, now func() time.Time) *ReportService {
	return &ReportService{
		gate:    projectGate{projects: projects, engine: engine},
		reports: reports,
		users:   users,
		now:     clock(now),
	}
}

func (s *ReportService) today() string {
	return dates.Today(s.now())
}

func (s *ReportService) General(ctx context.Context, actor user.User) (report.GeneralMetrics, error) {
	if !actor.IsAdmin() {
		return report.GeneralMetrics{}, errAdminOnly
	}

	projects, err := s.gate.projects.Count(ctx)
	if err != nil {
		return report.GeneralMetrics{}, err
	}

	c, err := s.reports.TaskCounts(ctx, report.Scope{}, s.today())
	if err != nil {
		return report.GeneralMetrics{}, err
	}

	return report.GeneralMetrics{
		TotalProjects:        projects,
		TotalTasks:           c.Total,
		CompletedTasks:       c.Done,
		OverdueTasks:         c.Overdue,
		TasksByStatus:        report.FillStatuses(c.ByStatus),
		CompletionPercentage: task.ComputeProgress(c.Done, c.Total),
	}, nil
}

func (s *ReportService) Project(ctx context.Context, actor user.User, id int64) (report.ProjectMetrics, error) {
	p, err := s.gate.load(ctx, actor, id)
	if err != nil {
		return report.ProjectMetrics{}, err
	}

	c, err := s.reports.TaskCounts(ctx, report.Scope{ProjectID: &p.ID}, s.today())
	if err != nil {
		return report.ProjectMetrics{}, err
	}

	return report.ProjectMetrics{
		ProjectID:            p.ID,
		TotalTasks:           c.Total,
		CompletedTasks:       c.Done,
		OverdueTasks:         c.Overdue,
		TasksByStatus:        report.FillStatuses(c.ByStatus),
		CompletionPercentage: task.ComputeProgress(c.Done, c.Total),
	}, nil
}

// User reports on the tasks assigned to userID. The permission check runs
// before the existence check so users cannot probe for ids.
func (s *ReportService) User(ctx context.Context, actor user.User, userID int64) (report.UserMetrics, error) {
	if !authz.CanViewUserReport(actor, userID) {
		return report.UserMetrics{}, errNoUserReport
	}

	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return report.UserMetrics{}, err
	}
	if !ok {
		return report.UserMetrics{}, user.ErrNotFound
	}

	c, err := s.reports.TaskCounts(ctx, report.Scope{AssigneeID: &userID}, s.today())
	if err != nil {
		return report.UserMetrics{}, err
	}

	return report.UserMetrics{
		UserID:               userID,
		TotalTasks:           c.Total,
		CompletedTasks:       c.Done,
		OverdueTasks:         c.Overdue,
		CompletionPercentage: task.ComputeProgress(c.Done, c.Total),
	}, nil
}
