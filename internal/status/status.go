// Package status derives aggregate state from child entities. Nothing in here
// touches storage; callers load the children, call in, and persist the result.
package status

import (
	"math"
	"time"

	"github.com/headless-pm/progress-tracker/internal/models"
)

// Reducer folds child statuses into a parent status.
type Reducer[C, P any] interface {
	Reduce(children []C) P
}

// ProgressReducer reduces embedded project tasks to a project status. OnHold
// tasks are left out of the completion ratio.
type ProgressReducer struct{}

func (ProgressReducer) Reduce(children []models.TaskStatus) models.ProjectStatus {
	calculable, completed, active := 0, 0, false
	for _, s := range children {
		switch s {
		case models.TaskStatusOnHold:
			continue
		case models.TaskStatusCompleted:
			completed++
		case models.TaskStatusInProgress:
			active = true
		}
		calculable++
	}

	switch {
	case calculable > 0 && completed == calculable:
		return models.ProjectStatusCompleted
	case completed > 0 || active:
		return models.ProjectStatusInProgress
	default:
		return models.ProjectStatusNotStarted
	}
}

// CategoricalReducer is the three-way rule of the subtask-based task model:
// completed if everything is completed, pending if everything is pending
// (or there is nothing), in progress otherwise.
type CategoricalReducer struct{}

func (CategoricalReducer) Reduce(children []models.WorkStatus) models.WorkStatus {
	if len(children) == 0 {
		return models.WorkStatusPending
	}

	allCompleted, allPending := true, true
	for _, s := range children {
		if s != models.WorkStatusCompleted {
			allCompleted = false
		}
		if s != models.WorkStatusPending {
			allPending = false
		}
	}

	switch {
	case allCompleted:
		return models.WorkStatusCompleted
	case allPending:
		return models.WorkStatusPending
	default:
		return models.WorkStatusInProgress
	}
}

var (
	_ Reducer[models.TaskStatus, models.ProjectStatus] = ProgressReducer{}
	_ Reducer[models.WorkStatus, models.WorkStatus]    = CategoricalReducer{}
)

// Aggregate holds the project fields derived from its tasks.
type Aggregate struct {
	Status           models.ProjectStatus
	Progress         int
	TotalLoggedHours float64
}

// RecomputeProject derives a project's aggregate from its tasks. A project that
// is OnHold keeps that status; progress and hours are still refreshed.
func RecomputeProject(current models.ProjectStatus, tasks []models.ProjectTask) Aggregate {
	agg := Aggregate{Status: current}

	statuses := make([]models.TaskStatus, 0, len(tasks))
	calculable, completed := 0, 0
	for _, t := range tasks {
		agg.TotalLoggedHours += t.LoggedHours
		statuses = append(statuses, t.Status)
		if t.Status == models.TaskStatusOnHold {
			continue
		}
		calculable++
		if t.Status == models.TaskStatusCompleted {
			completed++
		}
	}

	if calculable > 0 {
		agg.Progress = int(math.Round(100 * float64(completed) / float64(calculable)))
	}

	if current != models.ProjectStatusOnHold {
		agg.Status = ProgressReducer{}.Reduce(statuses)
	}
	return agg
}

// Apply copies the aggregate onto the project.
func (a Aggregate) Apply(p *models.Project) {
	p.Status = a.Status
	p.Progress = a.Progress
	p.TotalLoggedHours = a.TotalLoggedHours
	p.Health = models.ProjectHealthOnTrack
}

// StampCompletion sets CompletedAt the first time a task is seen Completed.
// It reports whether the task was changed.
func StampCompletion(t *models.ProjectTask, now time.Time) bool {
	if t.Status != models.TaskStatusCompleted || t.CompletedAt != nil {
		return false
	}
	t.CompletedAt = &now
	return true
}

// DeriveTaskStatus applies the three-way rule to a task's subtask flags.
func DeriveTaskStatus(subtasks []models.Subtask) models.WorkStatus {
	flags := make([]models.WorkStatus, len(subtasks))
	for i, st := range subtasks {
		flags[i] = models.WorkStatusPending
		if st.Completed {
			flags[i] = models.WorkStatusCompleted
		}
	}
	return CategoricalReducer{}.Reduce(flags)
}

// DeriveProjectStatus reduces standalone tasks to a project status.
func DeriveProjectStatus(tasks []models.Task) models.ProjectStatus {
	statuses := make([]models.WorkStatus, len(tasks))
	for i, t := range tasks {
		statuses[i] = t.Status
	}
	return ProjectStatusFor(CategoricalReducer{}.Reduce(statuses))
}

// ProjectStatusFor maps a three-state work status onto the project status set.
func ProjectStatusFor(s models.WorkStatus) models.ProjectStatus {
	switch s {
	case models.WorkStatusCompleted:
		return models.ProjectStatusCompleted
	case models.WorkStatusInProgress:
		return models.ProjectStatusInProgress
	default:
		return models.ProjectStatusNotStarted
	}
}

// SubtaskStatuses combines a task's subtask flags with the day's claims. A
// subtask claimed that day follows its claims: completed if any claimant
// completed it, otherwise in progress if any claimant started it, otherwise
// pending. An unclaimed subtask keeps its flag. Claims pointing past the last
// subtask are ignored.
func SubtaskStatuses(subtasks []models.Subtask, claims []models.Claim) []models.WorkStatus {
	out := make([]models.WorkStatus, len(subtasks))
	for i, st := range subtasks {
		out[i] = models.WorkStatusPending
		if st.Completed {
			out[i] = models.WorkStatusCompleted
		}
	}

	claimed := make([]models.WorkStatus, len(subtasks))
	for _, c := range claims {
		if c.SubtaskIndex < 0 || c.SubtaskIndex >= len(out) {
			continue
		}
		if rank(c.Status) >= rank(claimed[c.SubtaskIndex]) {
			claimed[c.SubtaskIndex] = c.Status
		}
	}
	for i, st := range claimed {
		if st != "" {
			out[i] = st
		}
	}
	return out
}

func rank(s models.WorkStatus) int {
	switch s {
	case models.WorkStatusCompleted:
		return 3
	case models.WorkStatusInProgress:
		return 2
	case models.WorkStatusPending:
		return 1
	}
	return 0
}
