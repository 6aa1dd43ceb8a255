package domain

import "sort"

const maxUpcomingDeadlines = 5

// Deadline is an upcoming due date surfaced on the dashboard.
type Deadline struct {
	TaskID  string `json:"taskId"`
	Title   string `json:"title"`
	EndDate int64  `json:"endDate"`
}

// Dashboard aggregates a single user's projects and tasks.
type Dashboard struct {
	TotalProjects     int        `json:"totalProjects"`
	ActiveProjects    int        `json:"activeProjects"`
	TotalTasks        int        `json:"totalTasks"`
	CompletedTasks    int        `json:"completedTasks"`
	OverdueTasks      int        `json:"overdueTasks"`
	UpcomingDeadlines []Deadline `json:"upcomingDeadlines"`
}

// BuildDashboard computes counts and the soonest upcoming deadlines at the
// evaluation instant now (unix millis). A task is overdue when it is
// incomplete and its end date is strictly before now; a task due exactly at
// now still counts as upcoming.
func BuildDashboard(projects []Project, tasks []Task, now int64) Dashboard {
	d := Dashboard{
		TotalProjects:     len(projects),
		TotalTasks:        len(tasks),
		UpcomingDeadlines: []Deadline{},
	}
	for _, p := range projects {
		if p.Status == ProjectActive {
			d.ActiveProjects++
		}
	}
	upcoming := make([]Deadline, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			d.CompletedTasks++
			continue
		}
		if t.EndDate == 0 {
			continue
		}
		if t.EndDate < now {
			d.OverdueTasks++
			continue
		}
		upcoming = append(upcoming, Deadline{TaskID: t.ID, Title: t.Title, EndDate: t.EndDate})
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].EndDate < upcoming[j].EndDate
	})
	if len(upcoming) > maxUpcomingDeadlines {
		upcoming = upcoming[:maxUpcomingDeadlines]
	}
	d.UpcomingDeadlines = upcoming
	return d
}
