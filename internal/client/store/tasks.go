package store

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/teamtask/internal/client"
	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

// TaskQuery narrows a task listing. Zero fields are not sent.
type TaskQuery struct {
	Page     int
	PageSize int
	Status   string
	OwnerID  uint64
	TeamID   uint64
	Search   string
}

func (q TaskQuery) build() *client.Query {
	cq := client.NewQuery().
		Populate("team", "owner", "workPackages").
		Sort("createdAt:desc").
		Page(q.Page, q.PageSize)
	if q.Status != "" {
		cq.Filter("status", "$eq", q.Status)
	}
	if q.OwnerID != 0 {
		cq.Filter("owner.id", "$eq", q.OwnerID)
	}
	if q.TeamID != 0 {
		cq.Filter("team.id", "$eq", q.TeamID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		cq.Filter("title", "$containsi", s)
	}
	return cq
}

// WorkPackageInput is a work package sent on task creation or on its own.
type WorkPackageInput struct {
	Name       string     `json:"name" validate:"required,max=255"`
	Percentage int        `json:"percentage" validate:"min=0,max=100"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	Status     string     `json:"status,omitempty" validate:"omitempty,oneof=pending inprogress completed"`
}

// TaskInput creates a task with optional nested work packages.
type TaskInput struct {
	Title        string             `json:"title" validate:"required,max=255"`
	Description  string             `json:"description,omitempty"`
	Deadline     *time.Time         `json:"deadline,omitempty"`
	Progress     int                `json:"progress" validate:"min=0,max=100"`
	Status       string             `json:"status,omitempty" validate:"omitempty,oneof=pending inprogress completed"`
	TeamID       *uint64            `json:"team,omitempty"`
	WorkPackages []WorkPackageInput `json:"workPackages,omitempty" validate:"dive"`
}

// TaskUpdate changes the set fields of a task. ClearDeadline and ClearTeam
// send null for the relation.
type TaskUpdate struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string    `json:"description"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"-"`
	Progress      *int       `json:"progress" validate:"omitempty,min=0,max=100"`
	Status        *string    `json:"status" validate:"omitempty,oneof=pending inprogress completed"`
	TeamID        *uint64    `json:"team"`
	ClearTeam     bool       `json:"-"`
}

func (u TaskUpdate) body() map[string]interface{} {
	data := map[string]interface{}{}
	if u.Title != nil {
		data["title"] = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		data["description"] = *u.Description
	}
	if u.ClearDeadline {
		data["deadline"] = nil
	} else if u.Deadline != nil {
		data["deadline"] = u.Deadline
	}
	if u.Progress != nil {
		data["progress"] = *u.Progress
	}
	if u.Status != nil {
		data["status"] = *u.Status
	}
	if u.ClearTeam {
		data["team"] = nil
	} else if u.TeamID != nil {
		data["team"] = *u.TeamID
	}
	return data
}

// SuggestInput describes a task to break down.
type SuggestInput struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// TaskSlice caches the task list, pagination and the task being viewed.
type TaskSlice struct {
	*collection[client.Task]

	api     *client.Client
	log     *zap.Logger
	current *client.Task
}

func NewTaskSlice(api *client.Client, log *zap.Logger) *TaskSlice {
	return &TaskSlice{
		collection: newCollection(func(t client.Task) uint64 { return t.ID }),
		api:        api,
		log:        logger.OrNop(log).Named("tasks"),
	}
}

func (s *TaskSlice) Tasks() []client.Task { return s.snapshot() }
func (s *TaskSlice) Loading() bool        { return s.loading() }
func (s *TaskSlice) Error() string        { return s.lastError() }
func (s *TaskSlice) ClearError()          { s.clearError() }

func (s *TaskSlice) Pagination() client.Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.Pagination
}

// Current returns the task last loaded by Get, if any.
func (s *TaskSlice) Current() *client.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

// SetCurrent selects a task for the detail view.
func (s *TaskSlice) SetCurrent(task *client.Task) {
	s.mu.Lock()
	s.current = task
	s.mu.Unlock()
	s.notify()
}

// Fetch replaces the list with one page of tasks.
func (s *TaskSlice) Fetch(ctx context.Context, q TaskQuery) error {
	seq := s.beginFetch()
	var resp client.Envelope[[]client.Task]
	err := s.api.Get(ctx, client.PathTasks, &resp, client.WithQuery(q.build()))
	if !s.endFetch(seq, resp.Data, resp.Meta, err, nil) && err == nil {
		s.log.Debug("discarded stale task fetch", zap.Uint64("seq", seq))
	}
	return err
}

// Get loads one task with its relations and makes it current.
func (s *TaskSlice) Get(ctx context.Context, id uint64) (*client.Task, error) {
	s.begin()
	var resp client.Envelope[client.Task]
	q := client.NewQuery().Populate("team", "owner", "workPackages")
	err := s.api.Get(ctx, client.Item(client.PathTasks, id), &resp, client.WithQuery(q))
	s.end(err, func() {
		task := resp.Data
		s.current = &task
		s.replace(task)
	})
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Create sends the task and its work packages in one request.
func (s *TaskSlice) Create(ctx context.Context, in TaskInput) (*client.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := client.ValidateInput(in); err != nil {
		return nil, s.reject(err)
	}

	s.begin()
	var resp client.Envelope[client.Task]
	err := s.api.Post(ctx, client.PathTasks, client.Payload[TaskInput]{Data: in}, &resp)
	s.end(err, func() { s.prepend(resp.Data) })
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Update replaces the cached task in place once the server acknowledges.
func (s *TaskSlice) Update(ctx context.Context, id uint64, in TaskUpdate) (*client.Task, error) {
	if err := client.ValidateInput(in); err != nil {
		return nil, s.reject(err)
	}

	s.begin()
	var resp client.Envelope[client.Task]
	err := s.api.Put(ctx, client.Item(client.PathTasks, id), client.Payload[map[string]interface{}]{Data: in.body()}, &resp)
	s.end(err, func() {
		s.replace(resp.Data)
		if s.current != nil && s.current.ID == resp.Data.ID {
			task := resp.Data
			s.current = &task
		}
	})
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Delete removes exactly one task from the cache once the server acknowledges.
func (s *TaskSlice) Delete(ctx context.Context, id uint64) error {
	s.begin()
	err := s.api.Delete(ctx, client.Item(client.PathTasks, id), nil, nil)
	s.end(err, func() {
		s.remove(id)
		if s.current != nil && s.current.ID == id {
			s.current = nil
		}
	})
	return err
}

// AddWorkPackage creates a work package under a task and refreshes the
// cached copy of that task.
func (s *TaskSlice) AddWorkPackage(ctx context.Context, taskID uint64, in WorkPackageInput) (*client.WorkPackage, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := client.ValidateInput(in); err != nil {
		return nil, s.reject(err)
	}

	body := struct {
		WorkPackageInput
		ProjectTask uint64 `json:"project_task"`
	}{in, taskID}

	s.begin()
	var resp client.Envelope[client.WorkPackage]
	err := s.api.Post(ctx, client.PathWorkPackages, client.Payload[interface{}]{Data: body}, &resp)
	s.end(err, func() {
		s.editTask(taskID, func(t *client.Task) {
			t.WorkPackages = append(t.WorkPackages, resp.Data)
		})
	})
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// RemoveWorkPackage deletes a work package and drops it from the cached task.
func (s *TaskSlice) RemoveWorkPackage(ctx context.Context, taskID, workPackageID uint64) error {
	s.begin()
	err := s.api.Delete(ctx, client.Item(client.PathWorkPackages, workPackageID), nil, nil)
	s.end(err, func() {
		s.editTask(taskID, func(t *client.Task) {
			kept := t.WorkPackages[:0:0]
			for _, wp := range t.WorkPackages {
				if wp.ID != workPackageID {
					kept = append(kept, wp)
				}
			}
			t.WorkPackages = kept
		})
	})
	return err
}

// SuggestWorkPackages asks the server for an AI breakdown. The cache is untouched.
func (s *TaskSlice) SuggestWorkPackages(ctx context.Context, in SuggestInput) ([]client.SuggestedWorkPackage, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := client.ValidateInput(in); err != nil {
		return nil, err
	}
	var resp client.Envelope[[]client.SuggestedWorkPackage]
	if err := s.api.Post(ctx, client.PathSuggestWorkPackage, in, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Reset drops everything, used on logout.
func (s *TaskSlice) Reset() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.reset()
}

// editTask mutates the cached list entry and the current task. Caller holds the lock.
func (s *TaskSlice) editTask(id uint64, fn func(*client.Task)) {
	if i := s.find(id); i >= 0 {
		fn(&s.items[i])
	}
	if s.current != nil && s.current.ID == id {
		fn(s.current)
	}
}
