package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"studioflow-api/domain"
	"studioflow-api/storage"
)

const defaultSearchLimit = 20

type signupRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

type userResponse struct {
	User domain.User `json:"user"`
}

type artistsResponse struct {
	Artists []domain.ArtistProfile `json:"artists"`
}

// createProfile writes the caller's denormalized profile record. Signing up
// twice keeps the original creation time and project list; users are never
// hard-deleted.
func createProfile(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		var req signupRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "invalid body")
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
			return badRequest(c, "name and email are required")
		}
		if req.Plan == "" {
			req.Plan = domain.PlanFree
		}

		ctx := c.Request().Context()
		now := time.Now().UnixMilli()
		user := domain.User{
			ID:          userID,
			Email:       req.Email,
			Name:        req.Name,
			Plan:        req.Plan,
			Preferences: map[string]string{},
			ProjectIDs:  []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		var existing domain.User
		switch err := store.Get(ctx, domain.UserKey(userID), &existing); {
		case err == nil:
			user.CreatedAt = existing.CreatedAt
			user.ProjectIDs = existing.ProjectIDs
			if len(existing.Preferences) > 0 {
				user.Preferences = existing.Preferences
			}
		case !errors.Is(err, storage.ErrNotFound):
			return internal(c, "failed to read profile")
		}

		if err := store.Put(ctx, domain.UserKey(userID), user); err != nil {
			return internal(c, "failed to store profile")
		}
		return c.JSON(http.StatusCreated, userResponse{User: user})
	}
}

func getProfile(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		var user domain.User
		if err := store.Get(c.Request().Context(), domain.UserKey(userID), &user); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "profile not found")
			}
			return internal(c, "failed to read profile")
		}
		return c.JSON(http.StatusOK, userResponse{User: user})
	}
}

func updateProfile(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := callerID(c, auth)
		if err != nil {
			return unauthorized(c, err.Error())
		}
		var upd domain.UserUpdate
		if err := decodeBody(c, &upd); err != nil {
			return badRequest(c, "invalid body")
		}

		ctx := c.Request().Context()
		var user domain.User
		if err := store.Get(ctx, domain.UserKey(userID), &user); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return notFound(c, "profile not found")
			}
			return internal(c, "failed to read profile")
		}
		user.Apply(upd, time.Now().UnixMilli())
		if err := store.Put(ctx, domain.UserKey(userID), user); err != nil {
			return internal(c, "failed to store profile")
		}
		return c.JSON(http.StatusOK, userResponse{User: user})
	}
}

// searchArtists scans all user records; the scan is intentionally unscoped
// since users are not owner-partitioned. Only the public projection is
// returned, never credentials or preference data.
func searchArtists(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := callerID(c, auth); err != nil {
			return unauthorized(c, err.Error())
		}

		query := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
		limit := defaultSearchLimit
		if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				return badRequest(c, "invalid limit")
			}
			limit = parsed
		}

		records, err := store.ScanPrefix(c.Request().Context(), domain.UserScanPrefix())
		if err != nil {
			c.Logger().Error(err)
			return internal(c, "search failed")
		}

		artists := make([]domain.ArtistProfile, 0, limit)
		for _, rec := range records {
			var user domain.User
			if err := json.Unmarshal(rec.Data, &user); err != nil {
				logger.WithFields(log.Fields{"key": rec.Key}).Warn("skipping malformed user record")
				continue
			}
			if !user.MatchesQuery(query) {
				continue
			}
			artists = append(artists, user.Artist())
			if len(artists) >= limit {
				break
			}
		}
		return c.JSON(http.StatusOK, artistsResponse{Artists: artists})
	}
}
