package domain

import "strings"

const (
	PlanFree = "free"

	ProjectActive = "active"

	TaskPending   = "pending"
	TaskCompleted = "completed"
)

// User is the denormalized profile written at signup. Credentials stay with
// the identity provider; this record never carries a password or token.
type User struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Plan        string            `json:"plan"`
	Preferences map[string]string `json:"preferences,omitempty"`
	ProjectIDs  []string          `json:"projectIds"`
	CreatedAt   int64             `json:"createdAt"`
	UpdatedAt   int64             `json:"updatedAt"`
}

// Project is owned by exactly one user; its storage key embeds the owner id
// even though Collaborators may list other users.
type Project struct {
	ID            string   `json:"id"`
	OwnerID       string   `json:"ownerId"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Genre         string   `json:"genre,omitempty"`
	Status        string   `json:"status"`
	TaskIDs       []string `json:"taskIds"`
	Collaborators []string `json:"collaborators"`
	Tracks        []string `json:"tracks,omitempty"`
	CreatedAt     int64    `json:"createdAt"`
	UpdatedAt     int64    `json:"updatedAt"`
}

// Task optionally back-references a project. A task with a ProjectID must
// appear in that project's TaskIDs list; both sides are maintained by the
// handlers, not the store.
type Task struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	ProjectID string `json:"projectId,omitempty"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
	StartDate int64  `json:"startDate,omitempty"`
	EndDate   int64  `json:"endDate,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Activity is append-only: created once, never mutated or deleted.
type Activity struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	UserID    string         `json:"userId"`
	UserEmail string         `json:"userEmail,omitempty"`
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt int64          `json:"createdAt"`
}

// Collaborator is read from collaboration records scanned by prefix. This
// service never writes them.
type Collaborator struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// ArtistProfile is the public projection of a user returned by search.
type ArtistProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Plan         string `json:"plan"`
	ProjectCount int    `json:"projectCount"`
}

// Artist projects the user onto its public search representation.
func (u User) Artist() ArtistProfile {
	return ArtistProfile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Plan:         u.Plan,
		ProjectCount: len(u.ProjectIDs),
	}
}

// MatchesQuery reports whether the lowercased query is a substring of the
// user's name or email. An empty query matches every user.
func (u User) MatchesQuery(q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.Email), q)
}
