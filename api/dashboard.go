package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"studioflow-api/domain"
)

type dashboardResponse struct {
	Dashboard domain.Dashboard `json:"dashboard"`
}

// getDashboard scans the caller's projects and tasks and aggregates them at
// the evaluation instant. It is the heaviest read in the API and carries the
// per-request metrics instrumentation.
func getDashboard(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newRequestMetrics(ctx, logger, "/api/dashboard")
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Finish(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = unauthorized(c, authErr.Error())
			return err
		}

		fetchStart := time.Now()
		projectRecords, scanErr := store.ScanPrefix(ctx, domain.ProjectScanPrefix(userID))
		if scanErr != nil {
			metrics.ObserveFetch(time.Since(fetchStart))
			metrics.SetErrorStage("storage")
			c.Logger().Error(scanErr)
			err = internal(c, "failed to build dashboard")
			return err
		}
		taskRecords, scanErr := store.ScanPrefix(ctx, domain.TaskScanPrefix(userID))
		metrics.ObserveFetch(time.Since(fetchStart))
		if scanErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(scanErr)
			err = internal(c, "failed to build dashboard")
			return err
		}

		projects := make([]domain.Project, 0, len(projectRecords))
		for _, rec := range projectRecords {
			var p domain.Project
			if err := json.Unmarshal(rec.Data, &p); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed project record")
				continue
			}
			projects = append(projects, p)
		}
		tasks := make([]domain.Task, 0, len(taskRecords))
		for _, rec := range taskRecords {
			var t domain.Task
			if err := json.Unmarshal(rec.Data, &t); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed task record")
				continue
			}
			tasks = append(tasks, t)
		}

		metrics.SetItemsReturned(len(projects) + len(tasks))
		dashboard := domain.BuildDashboard(projects, tasks, time.Now().UnixMilli())
		err = c.JSON(http.StatusOK, dashboardResponse{Dashboard: dashboard})
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}
