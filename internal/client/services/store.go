package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/logging"
)

// Store caches the current user's Dharmas and Tasks. Mutations go to the
// backend first and are reconciled into the cache only on success; a failed
// call leaves the cache as it was.
type Store struct {
	client client.Client
	focus  *FocusPolicy
	log    logging.Logger

	mu      sync.RWMutex
	dharmas []models.Dharma
	tasks   []models.Task

	// dharmasAll is set when the cached list includes hidden Dharmas.
	dharmasAll bool
}

func NewStore(c client.Client, focus *FocusPolicy, log logging.Logger) *Store {
	return &Store{client: c, focus: focus, log: log}
}

// Dharmas returns a copy of the cached Dharmas.
func (s *Store) Dharmas() []models.Dharma {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Dharma(nil), s.dharmas...)
}

// Tasks returns a copy of the cached Tasks.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Task(nil), s.tasks...)
}

// Dharma looks up a cached Dharma by id.
func (s *Store) Dharma(id int64) (models.Dharma, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.dharmas {
		if d.ID == id {
			return d, true
		}
	}
	return models.Dharma{}, false
}

// Reset drops both collections.
func (s *Store) Reset() {
	s.mu.Lock()
	s.dharmas = nil
	s.tasks = nil
	s.dharmasAll = false
	s.mu.Unlock()
}

// FetchDharmas replaces the cached Dharmas. On failure the previous list is
// kept and the error is returned for display.
func (s *Store) FetchDharmas(ctx context.Context, userID string, includeHidden bool) error {
	list, err := s.client.ListDharmasByUser(ctx, userID, includeHidden)
	if err != nil {
		s.log.Warn(ctx, "failed to fetch dharmas", "user_id", userID, "error", err)
		return fmt.Errorf("fetch dharmas: %w", err)
	}

	s.mu.Lock()
	s.dharmas = append([]models.Dharma(nil), list...)
	s.dharmasAll = includeHidden
	for i := range s.tasks {
		s.syncTaskLocked(&s.tasks[i])
	}
	s.mu.Unlock()
	return nil
}

// CreateDharma refuses locally once the user owns MaxDharmasPerUser. Hidden
// Dharmas count too, so a cache fetched without them is topped up with a
// full listing before the create goes out.
func (s *Store) CreateDharma(ctx context.Context, userID string, in models.DharmaInput) (*models.Dharma, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n, err := s.DharmaCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n >= models.MaxDharmasPerUser {
		return nil, fmt.Errorf("%w: at most %d dharmas", ErrDharmaLimitReached, models.MaxDharmasPerUser)
	}

	d, err := s.client.CreateDharma(ctx, userID, in)
	if err = s.mutationResult(ctx, "create dharma", d == nil, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.dharmas = append(s.dharmas, *d)
	s.mu.Unlock()
	return d, nil
}

// DharmaCount returns how many Dharmas the user owns, hidden ones included.
func (s *Store) DharmaCount(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	n, all := len(s.dharmas), s.dharmasAll
	s.mu.RUnlock()
	if all || n >= models.MaxDharmasPerUser {
		return n, nil
	}

	list, err := s.client.ListDharmasByUser(ctx, userID, true)
	if err != nil {
		s.log.Warn(ctx, "failed to count dharmas", "user_id", userID, "error", err)
		return 0, fmt.Errorf("count dharmas: %w", err)
	}
	return max(n, len(list)), nil
}

func (s *Store) UpdateDharma(ctx context.Context, dharmaID int64, in models.DharmaInput) (*models.Dharma, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	d, err := s.client.UpdateDharma(ctx, dharmaID, in)
	if err = s.mutationResult(ctx, "update dharma", d == nil, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.replaceDharmaLocked(*d)
	s.mu.Unlock()
	return d, nil
}

// ToggleDharmaHidden flips the Dharma's hidden flag and carries the
// refreshed Dharma into every cached task that belongs to it.
func (s *Store) ToggleDharmaHidden(ctx context.Context, dharmaID int64) (*models.Dharma, error) {
	d, err := s.client.ToggleDharmaHidden(ctx, dharmaID)
	if err = s.mutationResult(ctx, "toggle dharma hidden", d == nil, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.replaceDharmaLocked(*d)
	s.mu.Unlock()
	return d, nil
}

// DeleteDharma removes the Dharma and all of its cached tasks in one step.
func (s *Store) DeleteDharma(ctx context.Context, dharmaID int64) error {
	if err := s.client.DeleteDharma(ctx, dharmaID); err != nil {
		s.log.Error(ctx, "failed to delete dharma", "dharma_id", dharmaID, "error", err)
		return fmt.Errorf("delete dharma: %w", err)
	}

	s.mu.Lock()
	s.dharmas = filter(s.dharmas, func(d models.Dharma) bool { return d.ID != dharmaID })
	s.tasks = filter(s.tasks, func(t models.Task) bool { return t.Dharma.ID != dharmaID })
	s.mu.Unlock()
	return nil
}

// FetchTasks replaces the cached Tasks with one page of a Dharma's tasks.
func (s *Store) FetchTasks(ctx context.Context, dharmaID int64, page models.PageRequest) (*models.Page[models.Task], error) {
	p, err := s.client.ListTasksByDharma(ctx, dharmaID, page)
	return s.applyTaskPage(ctx, p, err, "dharma_id", dharmaID)
}

func (s *Store) FetchTasksByStatus(ctx context.Context, dharmaID int64, status models.TaskStatus, page models.PageRequest) (*models.Page[models.Task], error) {
	p, err := s.client.ListTasksByDharmaAndStatus(ctx, dharmaID, status, page)
	return s.applyTaskPage(ctx, p, err, "dharma_id", dharmaID, "status", status)
}

func (s *Store) FetchUserTasksByStatus(ctx context.Context, userID string, status models.TaskStatus, page models.PageRequest) (*models.Page[models.Task], error) {
	p, err := s.client.ListTasksByUserAndStatus(ctx, userID, status, page)
	return s.applyTaskPage(ctx, p, err, "user_id", userID, "status", status)
}

func (s *Store) applyTaskPage(ctx context.Context, p *models.Page[models.Task], err error, logArgs ...any) (*models.Page[models.Task], error) {
	if err != nil {
		s.log.Warn(ctx, "failed to fetch tasks", append(logArgs, "error", err)...)
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	if p == nil {
		p = &models.Page[models.Task]{First: true, Last: true}
	}

	s.mu.Lock()
	s.tasks = make([]models.Task, len(p.Content))
	for i, t := range p.Content {
		s.syncTaskLocked(&t)
		s.tasks[i] = t
	}
	s.mu.Unlock()
	return p, nil
}

func (s *Store) CreateTask(ctx context.Context, dharmaID int64, in models.TaskInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t, err := s.client.CreateTask(ctx, dharmaID, in)
	if err = s.mutationResult(ctx, "create task", t == nil, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.syncTaskLocked(t)
	s.tasks = append(s.tasks, *t)
	s.mu.Unlock()
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, taskID int64, in models.TaskInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkNotDone(taskID); err != nil {
		return nil, err
	}
	t, err := s.client.UpdateTask(ctx, taskID, in)
	return s.applyTask(ctx, "update task", t, err)
}

func (s *Store) MoveTaskToNow(ctx context.Context, taskID int64) (*models.Task, error) {
	if err := s.checkNotDone(taskID); err != nil {
		return nil, err
	}
	t, err := s.client.MoveTaskToNow(ctx, taskID)
	return s.applyTask(ctx, "move task to now", t, err)
}

// ChangeTaskStatus moves a task between NOW, NEXT and WAITING. DONE is
// reached through MarkTaskDone only, and a DONE task stays DONE.
func (s *Store) ChangeTaskStatus(ctx context.Context, taskID int64, status models.TaskStatus) (*models.Task, error) {
	if status == models.StatusDone {
		return nil, &models.ValidationError{Field: "status", Reason: "DONE is set with mark-done"}
	}
	if err := s.checkNotDone(taskID); err != nil {
		return nil, err
	}
	t, err := s.client.ChangeTaskStatus(ctx, taskID, status)
	return s.applyTask(ctx, "change task status", t, err)
}

func (s *Store) MarkTaskDone(ctx context.Context, taskID int64) (*models.Task, error) {
	t, err := s.client.MarkTaskDone(ctx, taskID)
	return s.applyTask(ctx, "mark task done", t, err)
}

func (s *Store) DeleteTask(ctx context.Context, taskID int64) error {
	if err := s.client.DeleteTask(ctx, taskID); err != nil {
		s.log.Error(ctx, "failed to delete task", "task_id", taskID, "error", err)
		return fmt.Errorf("delete task: %w", err)
	}

	s.mu.Lock()
	s.tasks = filter(s.tasks, func(t models.Task) bool { return t.ID != taskID })
	s.mu.Unlock()
	return nil
}

// FillFocus tops up the user's NOW list and merges the result into the
// cache. On a partial promotion failure the tasks that were promoted are
// still merged before the error is returned.
func (s *Store) FillFocus(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.focus.Replenish(ctx, userID)
	if len(tasks) > 0 {
		s.mu.Lock()
		for i := range tasks {
			s.syncTaskLocked(&tasks[i])
			s.upsertTaskLocked(tasks[i])
		}
		s.mu.Unlock()
	}
	if err != nil {
		return tasks, fmt.Errorf("fill focus: %w", err)
	}
	return tasks, nil
}

// checkNotDone rejects changes to a cached task that is already DONE.
func (s *Store) checkNotDone(taskID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == taskID && t.Status == models.StatusDone {
			return &models.ValidationError{Field: "status", Reason: "is DONE; completed tasks cannot be changed"}
		}
	}
	return nil
}

// applyTask replaces a cached task with the server's copy.
func (s *Store) applyTask(ctx context.Context, op string, t *models.Task, err error) (*models.Task, error) {
	if err = s.mutationResult(ctx, op, t == nil, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.syncTaskLocked(t)
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = *t
			break
		}
	}
	s.mu.Unlock()
	return t, nil
}

func (s *Store) mutationResult(ctx context.Context, op string, empty bool, err error) error {
	if err == nil && empty {
		err = ErrEmptyResult
	}
	if err != nil {
		s.log.Error(ctx, "mutation failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) replaceDharmaLocked(d models.Dharma) {
	for i := range s.dharmas {
		if s.dharmas[i].ID == d.ID {
			s.dharmas[i] = d
			break
		}
	}
	for i := range s.tasks {
		if s.tasks[i].Dharma.ID == d.ID {
			s.tasks[i].SyncHidden(d)
		}
	}
}

func (s *Store) upsertTaskLocked(t models.Task) {
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return
		}
	}
	s.tasks = append(s.tasks, t)
}

// syncTaskLocked makes the task's hidden flag follow its Dharma, preferring
// the cached copy of the Dharma when there is one.
func (s *Store) syncTaskLocked(t *models.Task) {
	for _, d := range s.dharmas {
		if d.ID == t.Dharma.ID {
			t.SyncHidden(d)
			return
		}
	}
	t.Hidden = t.Dharma.Hidden
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
