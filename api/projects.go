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

type createProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Tracks      []string `json:"tracks"`
}

type projectResponse struct {
	Project domain.Project `json:"project"`
}

type projectsResponse struct {
	Projects []domain.Project `json:"projects"`
}

// createProject persists the project under the owner-scoped key, then
// appends its id to the owner's project list. The list append is a second
// independent write: if it fails the project exists but is unlisted until a
// later write repairs the record. There is no rollback.
func createProject(store Store, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		fresh, release := claimIdempotencyKey(c, deduper, userID, logger)
		if !fresh {
			return duplicate(c, "request already processed")
		}
		var req createProjectRequest
		if err := decodeBody(c, &req); err != nil {
			release()
			return badRequest(c, "invalid body")
		}
		if req.Title == "" {
			release()
			return badRequest(c, "title is required")
		}

		ctx := c.Request().Context()
		now := time.Now().UnixMilli()
		project := domain.Project{
			ID:            domain.NewID(),
			OwnerID:       userID,
			Title:         req.Title,
			Description:   req.Description,
			Genre:         req.Genre,
			Status:        domain.ProjectActive,
			TaskIDs:       []string{},
			Collaborators: []string{userID},
			Tracks:        req.Tracks,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := store.Put(ctx, domain.ProjectKey(userID, project.ID), project); err != nil {
			release()
			return internal(c, "failed to store project")
		}

		var user domain.User
		switch err := store.Get(ctx, domain.UserKey(userID), &user); {
		case err == nil:
			user.ProjectIDs = append(user.ProjectIDs, project.ID)
			user.UpdatedAt = now
			if err := store.Put(ctx, domain.UserKey(userID), user); err != nil {
				logger.WithFields(log.Fields{"user": userID, "project": project.ID}).Warn("project stored but owner list update failed")
			}
		case errors.Is(err, storage.ErrNotFound):
			logger.WithFields(log.Fields{"user": userID, "project": project.ID}).Warn("project created without a profile record")
		default:
			logger.WithFields(log.Fields{"user": userID, "project": project.ID, "error": err.Error()}).Warn("owner list read failed after project create")
		}

		return c.JSON(http.StatusCreated, projectResponse{Project: project})
	}
}

func listProjects(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		records, err := store.ScanPrefix(c.Request().Context(), domain.ProjectScanPrefix(userID))
		if err != nil {
			c.Logger().Error(err)
			return internal(c, "failed to list projects")
		}
		projects := make([]domain.Project, 0, len(records))
		for _, rec := range records {
			var p domain.Project
			if err := json.Unmarshal(rec.Data, &p); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed project record")
				continue
			}
			projects = append(projects, p)
		}
		return c.JSON(http.StatusOK, projectsResponse{Projects: projects})
	}
}

func getProject(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		owner, ok := targetOwner(c, userID)
		if !ok {
			return unauthorized(c, "caller does not own the target record")
		}
		var project domain.Project
		if err := store.Get(c.Request().Context(), domain.ProjectKey(owner, c.Param("id")), &project); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "project not found")
			}
			return internal(c, "failed to read project")
		}
		return c.JSON(http.StatusOK, projectResponse{Project: project})
	}
}

func updateProject(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		owner, ok := targetOwner(c, userID)
		if !ok {
			return unauthorized(c, "caller does not own the target record")
		}
		var upd domain.ProjectUpdate
		if err := decodeBody(c, &upd); err != nil {
			return badRequest(c, "invalid body")
		}

		ctx := c.Request().Context()
		key := domain.ProjectKey(owner, c.Param("id"))
		var project domain.Project
		if err := store.Get(ctx, key, &project); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "project not found")
			}
			return internal(c, "failed to read project")
		}
		project.Apply(upd, time.Now().UnixMilli())
		if err := store.Put(ctx, key, project); err != nil {
			return internal(c, "failed to store project")
		}
		return c.JSON(http.StatusOK, projectResponse{Project: project})
	}
}
