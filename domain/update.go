package domain

// Partial updates use pointer fields: nil means "leave as stored". Apply
// overlays only the provided fields and stamps UpdatedAt; CreatedAt and every
// omitted field keep their stored values.

type UserUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Email       *string           `json:"email,omitempty"`
	Plan        *string           `json:"plan,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

func (u *User) Apply(upd UserUpdate, now int64) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Plan != nil {
		u.Plan = *upd.Plan
	}
	if upd.Preferences != nil {
		u.Preferences = upd.Preferences
	}
	u.UpdatedAt = now
}

type ProjectUpdate struct {
	Title         *string  `json:"title,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Genre         *string  `json:"genre,omitempty"`
	Status        *string  `json:"status,omitempty"`
	Collaborators []string `json:"collaborators,omitempty"`
	Tracks        []string `json:"tracks,omitempty"`
}

func (p *Project) Apply(upd ProjectUpdate, now int64) {
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Genre != nil {
		p.Genre = *upd.Genre
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Collaborators != nil {
		p.Collaborators = upd.Collaborators
	}
	if upd.Tracks != nil {
		p.Tracks = upd.Tracks
	}
	p.UpdatedAt = now
}

// TaskUpdate deliberately omits ProjectID: re-binding a task to another
// project would need list maintenance on both projects and is not part of
// this surface.
type TaskUpdate struct {
	Title     *string `json:"title,omitempty"`
	Status    *string `json:"status,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	StartDate *int64  `json:"startDate,omitempty"`
	EndDate   *int64  `json:"endDate,omitempty"`
}

func (t *Task) Apply(upd TaskUpdate, now int64) {
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Completed != nil {
		t.Completed = *upd.Completed
	}
	if upd.StartDate != nil {
		t.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		t.EndDate = *upd.EndDate
	}
	t.UpdatedAt = now
}
