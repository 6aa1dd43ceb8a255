package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"studioflow-api/domain"
	"studioflow-api/storage"
)

type stubAuth struct {
	id  string
	err error
}

func (s stubAuth) UserIDFromAuthHeader(string) (string, error) {
	return s.id, s.err
}

type capturePublisher struct {
	published []domain.Activity
}

func (p *capturePublisher) Publish(_ context.Context, act domain.Activity) error {
	p.published = append(p.published, act)
	return nil
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(t *testing.T, auth Authenticator) (*echo.Echo, *storage.Memory) {
	t.Helper()
	e := echo.New()
	store := storage.NewMemory()
	Register(e, store, auth, nil, nil, quietLogger())
	return e, store
}

func do(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer test")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, want, rec.Body.String())
	}
}

func wantErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var resp errorResponse
	decodeInto(t, rec, &resp)
	if resp.Code != want {
		t.Fatalf("error code = %q, want %q", resp.Code, want)
	}
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})
	rec := do(e, http.MethodGet, "/healthz", nil)
	wantStatus(t, rec, http.StatusOK)
}

func TestSignupProjectTaskLifecycle(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})

	rec := do(e, http.MethodPost, "/api/users", map[string]string{
		"name": "Sarah Chen", "email": "sarah@example.com",
	})
	wantStatus(t, rec, http.StatusCreated)
	var signup userResponse
	decodeInto(t, rec, &signup)
	if signup.User.ID != "u1" || signup.User.Plan != domain.PlanFree {
		t.Fatalf("unexpected user: %+v", signup.User)
	}

	rec = do(e, http.MethodPost, "/api/projects", map[string]string{"title": "Debut EP"})
	wantStatus(t, rec, http.StatusCreated)
	var created projectResponse
	decodeInto(t, rec, &created)
	projectID := created.Project.ID
	if projectID == "" || created.Project.OwnerID != "u1" {
		t.Fatalf("unexpected project: %+v", created.Project)
	}
	if created.Project.Status != domain.ProjectActive {
		t.Fatalf("new project status = %q", created.Project.Status)
	}
	if len(created.Project.Collaborators) != 1 || created.Project.Collaborators[0] != "u1" {
		t.Fatalf("new project collaborators = %v", created.Project.Collaborators)
	}

	rec = do(e, http.MethodGet, "/api/users/me", nil)
	wantStatus(t, rec, http.StatusOK)
	var me userResponse
	decodeInto(t, rec, &me)
	if len(me.User.ProjectIDs) != 1 || me.User.ProjectIDs[0] != projectID {
		t.Fatalf("owner project list = %v, want [%s]", me.User.ProjectIDs, projectID)
	}

	rec = do(e, http.MethodPost, "/api/tasks", map[string]string{
		"title": "Record vocals", "projectId": projectID,
	})
	wantStatus(t, rec, http.StatusCreated)
	var task taskResponse
	decodeInto(t, rec, &task)
	if task.ProjectLinked == nil || !*task.ProjectLinked {
		t.Fatalf("task should be linked, got %+v", task)
	}
	if task.Task.Status != domain.TaskPending {
		t.Fatalf("new task status = %q", task.Task.Status)
	}

	rec = do(e, http.MethodGet, "/api/projects/"+projectID, nil)
	wantStatus(t, rec, http.StatusOK)
	var fetched projectResponse
	decodeInto(t, rec, &fetched)
	if len(fetched.Project.TaskIDs) != 1 || fetched.Project.TaskIDs[0] != task.Task.ID {
		t.Fatalf("project task list = %v, want [%s]", fetched.Project.TaskIDs, task.Task.ID)
	}

	rec = do(e, http.MethodDelete, "/api/tasks/"+task.Task.ID, nil)
	wantStatus(t, rec, http.StatusOK)

	rec = do(e, http.MethodGet, "/api/projects/"+projectID, nil)
	wantStatus(t, rec, http.StatusOK)
	decodeInto(t, rec, &fetched)
	if len(fetched.Project.TaskIDs) != 0 {
		t.Fatalf("project task list after delete = %v, want empty", fetched.Project.TaskIDs)
	}

	rec = do(e, http.MethodGet, "/api/tasks", nil)
	wantStatus(t, rec, http.StatusOK)
	var tasks tasksResponse
	decodeInto(t, rec, &tasks)
	if len(tasks.Tasks) != 0 {
		t.Fatalf("task list after delete = %v, want empty", tasks.Tasks)
	}
}

func TestSignupPreservesExistingProfile(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	seed := domain.User{
		ID:          "u1",
		Email:       "old@example.com",
		Name:        "Old Name",
		Plan:        "pro",
		Preferences: map[string]string{"theme": "dark"},
		ProjectIDs:  []string{"p-existing"},
		CreatedAt:   1000,
		UpdatedAt:   1000,
	}
	if err := store.Put(context.Background(), domain.UserKey("u1"), seed); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPost, "/api/users", map[string]string{
		"name": "New Name", "email": "new@example.com",
	})
	wantStatus(t, rec, http.StatusCreated)
	var resp userResponse
	decodeInto(t, rec, &resp)
	if resp.User.CreatedAt != 1000 {
		t.Fatalf("re-signup changed CreatedAt to %d", resp.User.CreatedAt)
	}
	if len(resp.User.ProjectIDs) != 1 || resp.User.ProjectIDs[0] != "p-existing" {
		t.Fatalf("re-signup lost project list: %v", resp.User.ProjectIDs)
	}
	if resp.User.Preferences["theme"] != "dark" {
		t.Fatalf("re-signup lost preferences: %v", resp.User.Preferences)
	}
	if resp.User.Name != "New Name" || resp.User.Email != "new@example.com" {
		t.Fatalf("re-signup did not apply new fields: %+v", resp.User)
	}
}

func TestSignupValidation(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})

	rec := do(e, http.MethodPost, "/api/users", map[string]string{"name": "No Email"})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, CodeValidation)

	// Unknown fields are rejected, not silently dropped.
	rec = do(e, http.MethodPost, "/api/users", map[string]string{
		"name": "A", "email": "a@example.com", "password": "never",
	})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, CodeValidation)
}

func TestGetProfileNotFound(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})
	rec := do(e, http.MethodGet, "/api/users/me", nil)
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, rec, CodeNotFound)
}

func TestAuthFailureRejectsRequest(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{err: errBadAuthorization})
	rec := do(e, http.MethodGet, "/api/projects", nil)
	wantStatus(t, rec, http.StatusUnauthorized)
	wantErrorCode(t, rec, CodeUnauthorized)
}

func TestUpdateOtherOwnersProjectRejected(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	seed := domain.Project{ID: "p1", OwnerID: "u2", Title: "Theirs", Status: domain.ProjectActive}
	if err := store.Put(ctx, domain.ProjectKey("u2", "p1"), seed); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPatch, "/api/projects/p1?owner=u2", map[string]string{"title": "Mine now"})
	wantStatus(t, rec, http.StatusUnauthorized)
	wantErrorCode(t, rec, CodeUnauthorized)

	var stored domain.Project
	if err := store.Get(ctx, domain.ProjectKey("u2", "p1"), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Title != "Theirs" {
		t.Fatalf("record mutated despite rejection: %+v", stored)
	}

	// Reads across partitions are rejected the same way.
	rec = do(e, http.MethodGet, "/api/projects/p1?owner=u2", nil)
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestUpdateProjectMergesFields(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	seed := domain.Project{
		ID: "p1", OwnerID: "u1", Title: "Original", Description: "keep me",
		Genre: "ambient", Status: domain.ProjectActive,
		TaskIDs: []string{"t1"}, Collaborators: []string{"u1"},
		CreatedAt: 1000, UpdatedAt: 1000,
	}
	if err := store.Put(ctx, domain.ProjectKey("u1", "p1"), seed); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPatch, "/api/projects/p1", map[string]string{"title": "Renamed"})
	wantStatus(t, rec, http.StatusOK)
	var resp projectResponse
	decodeInto(t, rec, &resp)
	if resp.Project.Title != "Renamed" {
		t.Fatalf("title = %q", resp.Project.Title)
	}
	if resp.Project.Description != "keep me" || resp.Project.Genre != "ambient" {
		t.Fatalf("untouched fields changed: %+v", resp.Project)
	}
	if len(resp.Project.TaskIDs) != 1 || resp.Project.TaskIDs[0] != "t1" {
		t.Fatalf("task list changed: %v", resp.Project.TaskIDs)
	}
	if resp.Project.CreatedAt != 1000 {
		t.Fatalf("CreatedAt changed to %d", resp.Project.CreatedAt)
	}
	if resp.Project.UpdatedAt == 1000 {
		t.Fatal("UpdatedAt was not stamped")
	}
}

func TestUpdateProjectNotFound(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})
	rec := do(e, http.MethodPatch, "/api/projects/missing", map[string]string{"title": "x"})
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, rec, CodeNotFound)
}

func TestCreateProjectRequiresTitle(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})
	rec := do(e, http.MethodPost, "/api/projects", map[string]string{"genre": "techno"})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, CodeValidation)
}

func TestCreateTaskAgainstMissingProject(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})

	rec := do(e, http.MethodPost, "/api/tasks", map[string]string{
		"title": "Mix stems", "projectId": "nope",
	})
	wantStatus(t, rec, http.StatusCreated)
	var resp taskResponse
	decodeInto(t, rec, &resp)
	if resp.ProjectLinked == nil || *resp.ProjectLinked {
		t.Fatalf("task against missing project should report unlinked, got %+v", resp)
	}

	var stored domain.Task
	if err := store.Get(context.Background(), domain.TaskKey("u1", resp.Task.ID), &stored); err != nil {
		t.Fatalf("task was not persisted: %v", err)
	}
	if stored.ProjectID != "nope" {
		t.Fatalf("stored task lost its reference: %+v", stored)
	}
}

func TestCreateTaskWithoutProjectOmitsLinkField(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})
	rec := do(e, http.MethodPost, "/api/tasks", map[string]string{"title": "Standalone"})
	wantStatus(t, rec, http.StatusCreated)

	var raw map[string]json.RawMessage
	decodeInto(t, rec, &raw)
	if _, ok := raw["projectLinked"]; ok {
		t.Fatal("projectLinked should be omitted when no project was referenced")
	}
}

func TestUpdateTaskCompletedStatusSetsFlag(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	seed := domain.Task{ID: "t1", OwnerID: "u1", Title: "Master", Status: domain.TaskPending}
	if err := store.Put(ctx, domain.TaskKey("u1", "t1"), seed); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPatch, "/api/tasks/t1", map[string]string{"status": domain.TaskCompleted})
	wantStatus(t, rec, http.StatusOK)
	var resp taskResponse
	decodeInto(t, rec, &resp)
	if !resp.Task.Completed {
		t.Fatal("completed status should set the Completed flag")
	}
	if resp.Task.Title != "Master" {
		t.Fatalf("untouched field changed: %+v", resp.Task)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{id: "u1"})
	rec := do(e, http.MethodDelete, "/api/tasks/missing", nil)
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, rec, CodeNotFound)
}

func TestDeleteTaskToleratesMissingProject(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	seed := domain.Task{ID: "t1", OwnerID: "u1", Title: "Orphan", ProjectID: "gone"}
	if err := store.Put(ctx, domain.TaskKey("u1", "t1"), seed); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodDelete, "/api/tasks/t1", nil)
	wantStatus(t, rec, http.StatusOK)
	if err := store.Get(ctx, domain.TaskKey("u1", "t1"), &domain.Task{}); err != storage.ErrNotFound {
		t.Fatalf("task still present after delete: %v", err)
	}
}

func TestListingsAreOwnerScoped(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	mine := domain.Project{ID: "p1", OwnerID: "u1", Title: "Mine"}
	theirs := domain.Project{ID: "p2", OwnerID: "u2", Title: "Theirs"}
	if err := store.Put(ctx, domain.ProjectKey("u1", "p1"), mine); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, domain.ProjectKey("u2", "p2"), theirs); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodGet, "/api/projects", nil)
	wantStatus(t, rec, http.StatusOK)
	var resp projectsResponse
	decodeInto(t, rec, &resp)
	if len(resp.Projects) != 1 || resp.Projects[0].ID != "p1" {
		t.Fatalf("listing leaked across owners: %+v", resp.Projects)
	}
}

func TestListProjectsSkipsMalformedRecords(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	good := domain.Project{ID: "p2", OwnerID: "u1", Title: "Good"}
	if err := store.Put(ctx, domain.ProjectKey("u1", "p2"), good); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, domain.ProjectKey("u1", "p1"), "not an object"); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodGet, "/api/projects", nil)
	wantStatus(t, rec, http.StatusOK)
	var resp projectsResponse
	decodeInto(t, rec, &resp)
	if len(resp.Projects) != 1 || resp.Projects[0].ID != "p2" {
		t.Fatalf("malformed record not skipped: %+v", resp.Projects)
	}
}

func TestSearchArtists(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	users := []domain.User{
		{ID: "u1", Name: "Sarah Chen", Email: "sarah@example.com", Plan: domain.PlanFree, ProjectIDs: []string{"p1", "p2"}},
		{ID: "u2", Name: "Miles Park", Email: "miles@example.com", Plan: "pro"},
		{ID: "u3", Name: "Ana Sarabia", Email: "ana@example.com", Plan: domain.PlanFree},
	}
	for _, u := range users {
		if err := store.Put(ctx, domain.UserKey(u.ID), u); err != nil {
			t.Fatal(err)
		}
	}

	rec := do(e, http.MethodGet, "/api/artists/search?q=sar", nil)
	wantStatus(t, rec, http.StatusOK)
	var resp artistsResponse
	decodeInto(t, rec, &resp)
	if len(resp.Artists) != 2 {
		t.Fatalf("q=sar matched %d artists, want 2: %+v", len(resp.Artists), resp.Artists)
	}
	for _, a := range resp.Artists {
		if a.ID == "u1" && a.ProjectCount != 2 {
			t.Fatalf("project count = %d, want 2", a.ProjectCount)
		}
	}

	rec = do(e, http.MethodGet, "/api/artists/search", nil)
	decodeInto(t, rec, &resp)
	if len(resp.Artists) != 3 {
		t.Fatalf("empty query matched %d artists, want all 3", len(resp.Artists))
	}

	rec = do(e, http.MethodGet, "/api/artists/search?limit=1", nil)
	decodeInto(t, rec, &resp)
	if len(resp.Artists) != 1 {
		t.Fatalf("limit=1 returned %d artists", len(resp.Artists))
	}

	rec = do(e, http.MethodGet, "/api/artists/search?limit=abc", nil)
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, CodeValidation)

	rec = do(e, http.MethodGet, "/api/artists/search?limit=0", nil)
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestRecordActivityAndList(t *testing.T) {
	e := echo.New()
	store := storage.NewMemory()
	feed := &capturePublisher{}
	Register(e, store, stubAuth{id: "u1"}, feed, nil, quietLogger())

	profile := domain.User{ID: "u1", Email: "sarah@example.com", Name: "Sarah"}
	if err := store.Put(context.Background(), domain.UserKey("u1"), profile); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodPost, "/api/projects/p1/activity", map[string]any{
		"action": "track_uploaded",
		"detail": map[string]any{"track": "demo-v2.wav"},
	})
	wantStatus(t, rec, http.StatusCreated)
	var created activityResponse
	decodeInto(t, rec, &created)
	if created.Activity.UserEmail != "sarah@example.com" {
		t.Fatalf("activity email = %q", created.Activity.UserEmail)
	}
	if created.Activity.ProjectID != "p1" {
		t.Fatalf("activity project = %q", created.Activity.ProjectID)
	}
	if len(feed.published) != 1 || feed.published[0].ID != created.Activity.ID {
		t.Fatalf("activity was not published: %+v", feed.published)
	}

	rec = do(e, http.MethodPost, "/api/projects/p1/activity", map[string]any{"action": "comment_added"})
	wantStatus(t, rec, http.StatusCreated)

	rec = do(e, http.MethodGet, "/api/projects/p1/collab", nil)
	wantStatus(t, rec, http.StatusOK)
	var collab collaborationResponse
	decodeInto(t, rec, &collab)
	if len(collab.Activities) != 2 {
		t.Fatalf("activity count = %d, want 2", len(collab.Activities))
	}
	if len(collab.Collaborators) != 0 {
		t.Fatalf("unexpected collaborators: %+v", collab.Collaborators)
	}

	rec = do(e, http.MethodPost, "/api/projects/p1/activity", map[string]any{"detail": map[string]any{}})
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, rec, CodeValidation)
}

func TestActivityListCapAndOrder(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	for i := 0; i < activityFeedLimit+10; i++ {
		id := fmt.Sprintf("%013d-aaaaaaaa", i)
		act := domain.Activity{ID: id, ProjectID: "p1", UserID: "u1", Action: "edit", CreatedAt: int64(i)}
		if err := store.Put(ctx, domain.ActivityKey("p1", id), act); err != nil {
			t.Fatal(err)
		}
	}

	rec := do(e, http.MethodGet, "/api/projects/p1/collab", nil)
	wantStatus(t, rec, http.StatusOK)
	var resp collaborationResponse
	decodeInto(t, rec, &resp)
	if len(resp.Activities) != activityFeedLimit {
		t.Fatalf("activity count = %d, want %d", len(resp.Activities), activityFeedLimit)
	}
	for i := 1; i < len(resp.Activities); i++ {
		if resp.Activities[i-1].ID < resp.Activities[i].ID {
			t.Fatalf("activities not in descending key order at %d", i)
		}
	}
	// The oldest entries fall off, the newest survive.
	if resp.Activities[0].CreatedAt != int64(activityFeedLimit+9) {
		t.Fatalf("first activity CreatedAt = %d", resp.Activities[0].CreatedAt)
	}
}

func TestCollaborationIncludesExternalRecords(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()
	collab := domain.Collaborator{UserID: "u9", Email: "mix@example.com", Role: "engineer"}
	if err := store.Put(ctx, domain.CollabScanPrefix("p1")+"u9", collab); err != nil {
		t.Fatal(err)
	}

	rec := do(e, http.MethodGet, "/api/projects/p1/collab", nil)
	wantStatus(t, rec, http.StatusOK)
	var resp collaborationResponse
	decodeInto(t, rec, &resp)
	if len(resp.Collaborators) != 1 || resp.Collaborators[0].Role != "engineer" {
		t.Fatalf("collaborators = %+v", resp.Collaborators)
	}
}

func TestDashboardHandler(t *testing.T) {
	e, store := newTestServer(t, stubAuth{id: "u1"})
	ctx := context.Background()

	projects := []domain.Project{
		{ID: "p1", OwnerID: "u1", Title: "EP", Status: domain.ProjectActive},
		{ID: "p2", OwnerID: "u1", Title: "Archive", Status: "archived"},
	}
	for _, p := range projects {
		if err := store.Put(ctx, domain.ProjectKey("u1", p.ID), p); err != nil {
			t.Fatal(err)
		}
	}
	farFuture := int64(4102444800000) // well past any test run
	tasks := []domain.Task{
		{ID: "t1", OwnerID: "u1", Title: "Done", Status: domain.TaskCompleted, Completed: true},
		{ID: "t2", OwnerID: "u1", Title: "Late", Status: domain.TaskPending, EndDate: 1},
		{ID: "t3", OwnerID: "u1", Title: "Soon", Status: domain.TaskPending, EndDate: farFuture},
	}
	for _, task := range tasks {
		if err := store.Put(ctx, domain.TaskKey("u1", task.ID), task); err != nil {
			t.Fatal(err)
		}
	}

	rec := do(e, http.MethodGet, "/api/dashboard", nil)
	wantStatus(t, rec, http.StatusOK)
	var resp dashboardResponse
	decodeInto(t, rec, &resp)
	d := resp.Dashboard
	if d.TotalProjects != 2 || d.ActiveProjects != 1 {
		t.Fatalf("project counts = %d/%d", d.TotalProjects, d.ActiveProjects)
	}
	if d.TotalTasks != 3 || d.CompletedTasks != 1 || d.OverdueTasks != 1 {
		t.Fatalf("task counts = %d/%d/%d", d.TotalTasks, d.CompletedTasks, d.OverdueTasks)
	}
	if len(d.UpcomingDeadlines) != 1 || d.UpcomingDeadlines[0].TaskID != "t3" {
		t.Fatalf("upcoming = %+v", d.UpcomingDeadlines)
	}
}

func TestDashboardAuthFailure(t *testing.T) {
	e, _ := newTestServer(t, stubAuth{err: errMissingAuthorization})
	rec := do(e, http.MethodGet, "/api/dashboard", nil)
	wantStatus(t, rec, http.StatusUnauthorized)
	wantErrorCode(t, rec, CodeUnauthorized)
}
