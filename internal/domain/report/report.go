package report

import "github.com/geocoder89/taskhub/internal/domain/task"

// Scope limits which tasks are counted. A zero Scope counts every task.
type Scope struct {
	ProjectID  *int64
	AssigneeID *int64
}

// TaskCounts is the raw aggregate a metrics query returns.
type TaskCounts struct {
	Total    int
	Done     int
	Overdue  int
	ByStatus map[task.Status]int
}

type GeneralMetrics struct {
	TotalProjects        int                 `json:"totalProjects"`
	TotalTasks           int                 `json:"totalTasks"`
	CompletedTasks       int                 `json:"completedTasks"`
	OverdueTasks         int                 `json:"overdueTasks"`
	TasksByStatus        map[task.Status]int `json:"tasksByStatus"`
	CompletionPercentage int                 `json:"completionPercentage"`
}

type ProjectMetrics struct {
	ProjectID            int64               `json:"projectId"`
	TotalTasks           int                 `json:"totalTasks"`
	CompletedTasks       int                 `json:"completedTasks"`
	OverdueTasks         int                 `json:"overdueTasks"`
	TasksByStatus        map[task.Status]int `json:"tasksByStatus"`
	CompletionPercentage int                 `json:"completionPercentage"`
}

type UserMetrics struct {
	UserID               int64 `json:"userId"`
	TotalTasks           int   `json:"totalTasks"`
	CompletedTasks       int   `json:"completedTasks"`
	OverdueTasks         int   `json:"overdueTasks"`
	CompletionPercentage int   `json:"completionPercentage"`
}

// FillStatuses makes sure every status has a key, so clients can render
// empty columns.
func FillStatuses(m map[task.Status]int) map[task.Status]int {
	if m == nil {
		m = make(map[task.Status]int, len(task.Statuses))
	}
	for _, s := range task.Statuses {
		if _, ok := m[s]; !ok {
			m[s] = 0
		}
	}
	return m
}
