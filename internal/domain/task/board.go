package task

// Board is the kanban view of one project. Columns keep list order.
type Board struct {
	ProjectID  int64  `json:"projectId"`
	Pending    []Task `json:"pending"`
	InProgress []Task `json:"inProgress"`
	Done       []Task `json:"done"`
}

// GroupBoard sorts tasks into the three status columns.
func GroupBoard(projectID int64, tasks []Task) Board {
	b := Board{
		ProjectID:  projectID,
		Pending:    []Task{},
		InProgress: []Task{},
		Done:       []Task{},
	}
	for _, t := range tasks {
		switch t.Status {
		case StatusPending:
			b.Pending = append(b.Pending, t)
		case StatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case StatusDone:
			b.Done = append(b.Done, t)
		}
	}
	return b
}
