package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"studioflow-api/domain"
	"studioflow-api/storage"
)

// The optimizer is a placeholder: it returns canned suggestions and echoes
// each task's stored schedule untouched. It never claims to have computed a
// different schedule than the one it returns.
var timelineSuggestions = []string{
	"Batch recording sessions for tracks that share instrumentation",
	"Schedule mixing only after every tracking task is complete",
	"Leave at least one free day between final mix and mastering",
}

type taskSchedule struct {
	TaskID    string `json:"taskId"`
	Title     string `json:"title"`
	StartDate int64  `json:"startDate,omitempty"`
	EndDate   int64  `json:"endDate,omitempty"`
}

type optimizationResponse struct {
	Optimization struct {
		ProjectID   string         `json:"projectId"`
		Suggestions []string       `json:"suggestions"`
		Schedule    []taskSchedule `json:"schedule"`
	} `json:"optimization"`
}

func optimizeTimeline(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
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
		projectID := c.Param("id")
		var project domain.Project
		if err := store.Get(ctx, domain.ProjectKey(owner, projectID), &project); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "project not found")
			}
			return internal(c, "failed to read project")
		}

		records, err := store.ScanPrefix(ctx, domain.TaskScanPrefix(owner))
		if err != nil {
			c.Logger().Error(err)
			return internal(c, "failed to read tasks")
		}

		resp := optimizationResponse{}
		resp.Optimization.ProjectID = projectID
		resp.Optimization.Suggestions = timelineSuggestions
		resp.Optimization.Schedule = []taskSchedule{}
		for _, rec := range records {
			var task domain.Task
			if err := json.Unmarshal(rec.Data, &task); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed task record")
				continue
			}
			if task.ProjectID != projectID {
				continue
			}
			resp.Optimization.Schedule = append(resp.Optimization.Schedule, taskSchedule{
				TaskID:    task.ID,
				Title:     task.Title,
				StartDate: task.StartDate,
				EndDate:   task.EndDate,
			})
		}
		return c.JSON(http.StatusOK, resp)
	}
}
