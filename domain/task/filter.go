package task

// PageSize is the fixed number of tasks per list page.
const PageSize = 10

// Filters narrows the visible-task set for the list query. Empty string
// fields mean "no filter". ShowCompleted defaults to true and AssignedToMe
// to false at the HTTP layer.
type Filters struct {
	Status        string `json:"status,omitempty"`
	Priority      string `json:"priority,omitempty"`
	ShowCompleted bool   `json:"show_completed"`
	AssignedToMe  bool   `json:"assigned_to_me"`
}

// Page is one page of the list query result together with pagination
// metadata.
type Page struct {
	Tasks      []*Task `json:"tasks"`
	PageNumber int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalTasks int64   `json:"total_tasks"`
	TotalPages int     `json:"total_pages"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
}
