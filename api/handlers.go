package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

const requestBodyMaxSize = 64 * 1024 // 64 KiB

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, auth Authenticator, feed Publisher, deduper Deduper, logger *log.Logger) {
	e.Use(GzipRequestMiddleware())

	e.POST("/api/users", createProfile(store, auth))
	e.GET("/api/users/me", getProfile(store, auth))
	e.PATCH("/api/users/me", updateProfile(store, auth))
	e.GET("/api/artists/search", searchArtists(store, auth, logger))

	e.POST("/api/projects", createProject(store, auth, deduper, logger))
	e.GET("/api/projects", listProjects(store, auth, logger))
	e.GET("/api/projects/:id", getProject(store, auth))
	e.PATCH("/api/projects/:id", updateProject(store, auth))
	e.POST("/api/projects/:id/activity", recordActivity(store, auth, feed, logger))
	e.GET("/api/projects/:id/collab", getCollaboration(store, auth, logger))
	e.POST("/api/projects/:id/optimize", optimizeTimeline(store, auth, logger))

	e.POST("/api/tasks", createTask(store, auth, deduper, logger))
	e.GET("/api/tasks", listTasks(store, auth, logger))
	e.PATCH("/api/tasks/:id", updateTask(store, auth))
	e.DELETE("/api/tasks/:id", deleteTask(store, auth, logger))

	e.GET("/api/dashboard", getDashboard(store, auth, logger))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// decodeBody reads a size-limited JSON request body into out, rejecting
// unknown fields.
func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func callerID(c echo.Context, auth Authenticator) (string, error) {
	return auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

// targetOwner resolves the owner segment of an owner-scoped key. A request
// may address a partition explicitly through the owner query parameter, but
// anything other than the caller's own id is rejected before any store
// access: only the owner can read or mutate an owner-scoped record.
func targetOwner(c echo.Context, caller string) (string, bool) {
	owner := c.QueryParam("owner")
	if owner == "" || owner == caller {
		return caller, true
	}
	return owner, false
}

// claimIdempotencyKey checks the Idempotency-Key request header against the
// deduper. It returns false when the key was already used; the release
// closure undoes the claim when the create fails afterwards.
func claimIdempotencyKey(c echo.Context, deduper Deduper, userID string, logger *log.Logger) (fresh bool, release func()) {
	key := c.Request().Header.Get("Idempotency-Key")
	if key == "" || deduper == nil {
		return true, func() {}
	}
	ctx := c.Request().Context()
	added, err := deduper.Add(ctx, userID, key)
	if err != nil {
		// Dedup is advisory; a redis failure must not block creates.
		logger.WithFields(log.Fields{"user": userID, "error": err.Error()}).Warn("idempotency check failed")
		return true, func() {}
	}
	if !added {
		return false, func() {}
	}
	return true, func() { _ = deduper.Remove(ctx, userID, key) }
}
