package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"studioflow-api/domain"
	"studioflow-api/storage"
)

// activityFeedLimit caps the activity list at the most recent entries by key
// order per read.
const activityFeedLimit = 50

type recordActivityRequest struct {
	Action string         `json:"action"`
	Detail map[string]any `json:"detail"`
}

type activityResponse struct {
	Activity domain.Activity `json:"activity"`
}

type collaborationResponse struct {
	Activities    []domain.Activity     `json:"activities"`
	Collaborators []domain.Collaborator `json:"collaborators"`
}

// recordActivity appends an activity record for the project. Activity keys
// embed the project id, not an owner id, so any verified caller working on
// the project may record; nothing else is updated. When a feed queue is
// configured the record is also published, best-effort.
func recordActivity(store Store, auth Authenticator, feed Publisher, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		var req recordActivityRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}
		if req.Action == "" {
			return badRequest(c, "action is required")
		}

		ctx := c.Request().Context()
		projectID := c.Param("id")

		// Best-effort email denormalization from the caller's profile.
		email := ""
		var user domain.User
		if err := store.Get(ctx, domain.UserKey(userID), &user); err == nil {
			email = user.Email
		} else if !errors.Is(err, storage.ErrNotFound) {
			logger.WithFields(log.Fields{"user": userID, "error": err.Error()}).Warn("profile read failed while recording activity")
		}

		act := domain.Activity{
			ID:        domain.NewID(),
			ProjectID: projectID,
			UserID:    userID,
			UserEmail: email,
			Action:    req.Action,
			Detail:    req.Detail,
			CreatedAt: time.Now().UnixMilli(),
		}
		if err := store.Put(ctx, domain.ActivityKey(projectID, act.ID), act); err != nil {
			return internal(c, "failed to store activity")
		}
		if feed != nil {
			if err := feed.Publish(ctx, act); err != nil {
				logger.WithFields(log.Fields{"activity": act.ID, "error": err.Error()}).Warn("activity publish failed")
			}
		}
		return c.JSON(http.StatusCreated, activityResponse{Activity: act})
	}
}

// getCollaboration returns the project's recent activity plus whatever
// collaboration records exist under its prefix. Collaboration records are
// written by other systems; this service only scans them.
func getCollaboration(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return unauthorized(c, err.Error())
		}

		ctx := c.Request().Context()
		projectID := c.Param("id")

		records, err := store.ScanPrefix(ctx, domain.ActivityScanPrefix(projectID))
		if err != nil {
			c.Logger().Error(err)
			return internal(c, "failed to list activity")
		}
		// Ids sort roughly by creation time, so descending key order is the
		// best-effort recency the feed promises.
		sort.Slice(records, func(i, j int) bool { return records[i].Key > records[j].Key })
		activities := make([]domain.Activity, 0, activityFeedLimit)
		for _, rec := range records {
			var act domain.Activity
			if err := json.Unmarshal(rec.Data, &act); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed activity record")
				continue
			}
			activities = append(activities, act)
			if len(activities) >= activityFeedLimit {
				break
			}
		}

		collabRecords, err := store.ScanPrefix(ctx, domain.CollabScanPrefix(projectID))
		if err != nil {
			c.Logger().Error(err)
			return internal(c, "failed to list collaborators")
		}
		collaborators := make([]domain.Collaborator, 0, len(collabRecords))
		for _, rec := range collabRecords {
			var collab domain.Collaborator
			if err := json.Unmarshal(rec.Data, &collab); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed collaboration record")
				continue
			}
			collaborators = append(collaborators, collab)
		}

		return c.JSON(http.StatusOK, collaborationResponse{
			Activities:    activities,
			Collaborators: collaborators,
		})
	}
}
