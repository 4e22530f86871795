package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
)

func (a *App) visibleTasks(ts []models.Task) []models.Task {
	if a.session.ShowHidden() {
		return ts
	}
	out := make([]models.Task, 0, len(ts))
	for _, t := range ts {
		if !t.Hidden {
			out = append(out, t)
		}
	}
	return out
}

func (a *App) printSidebar() {
	if !a.session.SidebarCollapsed() {
		renderSidebar(a.out, a.palette(), a.store.Dharmas())
	}
}

// ListTasks fetches the first page of a Dharma's tasks, optionally filtered
// by status.
func (a *App) ListTasks(ctx context.Context, dharmaID int64, status string) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	var (
		pg  *models.Page[models.Task]
		err error
	)
	title := fmt.Sprintf("Tasks of dharma %d", dharmaID)
	if d, ok := a.store.Dharma(dharmaID); ok {
		title = "Tasks of " + d.Name
	}

	if status == "" {
		pg, err = a.store.FetchTasks(ctx, dharmaID, models.PageRequest{})
	} else {
		st, perr := models.ParseTaskStatus(strings.ToUpper(status))
		if perr != nil {
			notifyError(a.out, perr)
			return perr
		}
		title += " [" + string(st) + "]"
		pg, err = a.store.FetchTasksByStatus(ctx, dharmaID, st, models.PageRequest{})
	}
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	p := a.palette()
	a.printSidebar()
	renderTasks(a.out, p, title, a.visibleTasks(a.store.Tasks()))
	renderPageFooter(a.out, p, pg)
	return nil
}

// readTaskInput prompts for every task field, offering cur's values as
// defaults.
func (a *App) readTaskInput(cur models.TaskInput) (models.TaskInput, error) {
	var in models.TaskInput
	var err error

	if in.Title, err = GetWithDefault(a.reader, "Title (5-60 characters)", cur.Title, a.out); err != nil {
		return in, err
	}
	if in.Description, err = GetWithDefault(a.reader, "Description (optional, up to 200 characters)", cur.Description, a.out); err != nil {
		return in, err
	}

	karma, err := GetChoice(a.reader, "Karma type", toStrings(models.KarmaTypes), string(cur.KarmaType), a.out)
	if err != nil {
		return in, err
	}
	in.KarmaType = models.KarmaType(karma)

	def := string(cur.EffortLevel)
	if def == "" {
		def = string(models.EffortMedium)
	}
	effort, err := GetChoice(a.reader, "Effort level", toStrings(models.EffortLevels), def, a.out)
	if err != nil {
		return in, err
	}
	in.EffortLevel = models.EffortLevel(effort)
	return in, nil
}

func (a *App) AddTask(ctx context.Context, dharmaID int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	in, err := a.readTaskInput(models.TaskInput{})
	if err != nil {
		return err
	}

	t, err := a.store.CreateTask(ctx, dharmaID, in)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Task %q created (id %d, %s).", t.Title, t.ID, t.Status)
	return nil
}

func (a *App) findTask(id int64) (models.Task, error) {
	for _, t := range a.store.Tasks() {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, fmt.Errorf("task %d is not loaded; list its dharma with 'tasks' first", id)
}

func (a *App) EditTask(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	cur, err := a.findTask(id)
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	in, err := a.readTaskInput(models.TaskInput{
		Title:       cur.Title,
		Description: deref(cur.Description),
		KarmaType:   cur.KarmaType,
		EffortLevel: cur.EffortLevel,
	})
	if err != nil {
		return err
	}

	t, err := a.store.UpdateTask(ctx, id, in)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Task %q updated.", t.Title)
	return nil
}

func (a *App) ChangeTaskStatus(ctx context.Context, id int64, status string) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	st, err := models.ParseTaskStatus(strings.ToUpper(status))
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	t, err := a.store.ChangeTaskStatus(ctx, id, st)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Task %q moved to %s.", t.Title, t.Status)
	return nil
}

func (a *App) MoveTaskToNow(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	t, err := a.store.MoveTaskToNow(ctx, id)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Task %q is now in focus.", t.Title)
	return nil
}

func (a *App) MarkTaskDone(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	t, err := a.store.MarkTaskDone(ctx, id)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Task %q done.", t.Title)
	return nil
}

func (a *App) DeleteTask(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete task %d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.store.DeleteTask(ctx, id); err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Task %d deleted.", id)
	return nil
}

func toStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
