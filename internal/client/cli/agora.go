package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/oriontask/internal/client/services"
)

// Agora tops up the NOW list from NEXT and shows the result.
func (a *App) Agora(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	tasks, err := a.store.FillFocus(ctx, u.ID)

	var perr *services.PromotionError
	if err != nil && !errors.As(err, &perr) {
		notifyError(a.out, err)
		return err
	}

	p := a.palette()
	a.printSidebar()
	shown := a.visibleTasks(tasks)
	title := fmt.Sprintf("Agora: in focus (%d/%d)", len(shown), services.FocusCapacity)
	if hidden := len(tasks) - len(shown); hidden > 0 {
		title += fmt.Sprintf(", %d hidden", hidden)
	}
	renderTasks(a.out, p, title, shown)

	if perr != nil {
		notifyError(a.out, fmt.Errorf("only %d task(s) could be promoted: %s", len(perr.Promoted), errorMessage(perr.Err)))
		return err
	}
	return nil
}
