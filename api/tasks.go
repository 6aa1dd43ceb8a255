package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"studioflow-api/domain"
	"studioflow-api/storage"
)

type createTaskRequest struct {
	Title     string `json:"title"`
	ProjectID string `json:"projectId"`
	Status    string `json:"status"`
	StartDate int64  `json:"startDate"`
	EndDate   int64  `json:"endDate"`
}

type taskResponse struct {
	Task domain.Task `json:"task"`
	// ProjectLinked is set only when the request referenced a project: true
	// once the project's task list carries the new id, false when the
	// referenced project was missing and the task was created unlinked.
	ProjectLinked *bool `json:"projectLinked,omitempty"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// createTask persists the task, then appends its id to the referenced
// project's task list. A reference to a missing project is not an error: the
// task is still created and the response reports the link as absent.
func createTask(store Store, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		fresh, release := claimIdempotencyKey(c, deduper, userID, logger)
		if !fresh {
			return duplicate(c, "request already processed")
		}
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			release()
			return badRequest(c, "invalid body")
		}
		if req.Title == "" {
			release()
			return badRequest(c, "title is required")
		}
		if req.Status == "" {
			req.Status = domain.TaskPending
		}

		ctx := c.Request().Context()
		now := time.Now().UnixMilli()
		task := domain.Task{
			ID:        domain.NewID(),
			OwnerID:   userID,
			ProjectID: req.ProjectID,
			Title:     req.Title,
			Status:    req.Status,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.Put(ctx, domain.TaskKey(userID, task.ID), task); err != nil {
			release()
			return internal(c, "failed to store task")
		}

		resp := taskResponse{Task: task}
		if req.ProjectID != "" {
			linked := false
			var project domain.Project
			switch err := store.Get(ctx, domain.ProjectKey(userID, req.ProjectID), &project); {
			case err == nil:
				project.TaskIDs = append(project.TaskIDs, task.ID)
				project.UpdatedAt = now
				if err := store.Put(ctx, domain.ProjectKey(userID, req.ProjectID), project); err != nil {
					logger.WithFields(log.Fields{"task": task.ID, "project": req.ProjectID}).Warn("task stored but project list update failed")
				} else {
					linked = true
				}
			case errors.Is(err, storage.ErrNotFound):
				logger.WithFields(log.Fields{"task": task.ID, "project": req.ProjectID}).Warn("task references a missing project")
			default:
				logger.WithFields(log.Fields{"task": task.ID, "project": req.ProjectID, "error": err.Error()}).Warn("project read failed after task create")
			}
			resp.ProjectLinked = &linked
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

func listTasks(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		records, err := store.ScanPrefix(c.Request().Context(), domain.TaskScanPrefix(userID))
		if err != nil {
			c.Logger().Error(err)
			return internal(c, "failed to list tasks")
		}
		tasks := make([]domain.Task, 0, len(records))
		for _, rec := range records {
			var t domain.Task
			if err := json.Unmarshal(rec.Data, &t); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed task record")
				continue
			}
			tasks = append(tasks, t)
		}
		return c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
	}
}

func updateTask(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		owner, ok := targetOwner(c, userID)
		if !ok {
			return unauthorized(c, "caller does not own the target record")
		}
		var upd domain.TaskUpdate
		if err := decodeBody(c, &upd); err != nil {
			return badRequest(c, "invalid body")
		}

		ctx := c.Request().Context()
		key := domain.TaskKey(owner, c.Param("id"))
		var task domain.Task
		if err := store.Get(ctx, key, &task); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "task not found")
			}
			return internal(c, "failed to read task")
		}
		task.Apply(upd, time.Now().UnixMilli())
		if task.Status == domain.TaskCompleted {
			task.Completed = true
		}
		if err := store.Put(ctx, key, task); err != nil {
			return internal(c, "failed to store task")
		}
		return c.JSON(http.StatusOK, taskResponse{Task: task})
	}
}

// deleteTask removes the task key, then prunes the id from the referenced
// project's task list. The two writes are sequential and independent; a
// failure between them leaves a dangling id that reads tolerate.
func deleteTask(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		owner, ok := targetOwner(c, userID)
		if !ok {
			return unauthorized(c, "caller does not own the target record")
		}

		ctx := c.Request().Context()
		key := domain.TaskKey(owner, c.Param("id"))
		var task domain.Task
		if err := store.Get(ctx, key, &task); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "task not found")
			}
			return internal(c, "failed to read task")
		}
		if err := store.Delete(ctx, key); err != nil {
			return internal(c, "failed to delete task")
		}

		if task.ProjectID != "" {
			var project domain.Project
			switch err := store.Get(ctx, domain.ProjectKey(owner, task.ProjectID), &project); {
			case err == nil:
				pruned := project.TaskIDs[:0]
				for _, id := range project.TaskIDs {
					if id != task.ID {
						pruned = append(pruned, id)
					}
				}
				if len(pruned) != len(project.TaskIDs) {
					project.TaskIDs = pruned
					project.UpdatedAt = time.Now().UnixMilli()
					if err := store.Put(ctx, domain.ProjectKey(owner, task.ProjectID), project); err != nil {
						logger.WithFields(log.Fields{"task": task.ID, "project": task.ProjectID}).Warn("task deleted but project list cleanup failed")
					}
				}
			case errors.Is(err, storage.ErrNotFound):
				logger.WithFields(log.Fields{"task": task.ID, "project": task.ProjectID}).Debug("deleted task referenced a missing project")
			default:
				logger.WithFields(log.Fields{"task": task.ID, "project": task.ProjectID, "error": err.Error()}).Warn("project read failed during task delete")
			}
		}
		return c.JSON(http.StatusOK, taskResponse{Task: task})
	}
}
