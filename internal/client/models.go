package client

import "time"

// User is the API view of an account.
type User struct {
	ID        uint64        `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Role      string        `json:"role"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Teams     []TeamSummary `json:"teams,omitempty"`
}

// TeamSummary is a team as listed on a user.
type TeamSummary struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Team struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Leader      *User     `json:"leader,omitempty"`
	Members     []User    `json:"members,omitempty"`
	Tasks       []Task    `json:"project_tasks,omitempty"`
}

// MemberIDs returns the ids of the loaded members.
func (t Team) MemberIDs() []uint64 {
	ids := make([]uint64, len(t.Members))
	for i, m := range t.Members {
		ids[i] = m.ID
	}
	return ids
}

type Task struct {
	ID           uint64        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Deadline     *time.Time    `json:"deadline"`
	Progress     int           `json:"progress"`
	Status       string        `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Owner        *User         `json:"owner,omitempty"`
	Team         *Team         `json:"team,omitempty"`
	WorkPackages []WorkPackage `json:"workPackages,omitempty"`
}

type WorkPackage struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	Percentage int        `json:"percentage"`
	Deadline   *time.Time `json:"deadline"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Notification struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SuggestedWorkPackage is one AI-proposed breakdown item.
type SuggestedWorkPackage struct {
	Name       string     `json:"name"`
	Percentage int        `json:"percentage"`
	Deadline   *time.Time `json:"deadline"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	JWT  string `json:"jwt"`
	User User   `json:"user"`
}

// Pagination mirrors meta.pagination.
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	PageCount int   `json:"pageCount"`
	Total     int64 `json:"total"`
}

// Meta mirrors the meta object of list responses.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// Envelope is the {data, meta} response shape.
type Envelope[T any] struct {
	Data T    `json:"data"`
	Meta Meta `json:"meta"`
}

// Payload is the {data: ...} request shape for create and update.
type Payload[T any] struct {
	Data T `json:"data"`
}
