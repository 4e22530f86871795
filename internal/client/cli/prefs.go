package cli

import (
	"context"
)

func (a *App) ToggleTheme(ctx context.Context) error {
	t, err := a.session.ToggleTheme(ctx)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Theme set to %s.", t)
	return nil
}

// ToggleShowHidden also refetches the Dharma list with the new setting.
func (a *App) ToggleShowHidden(ctx context.Context) error {
	v, err := a.session.ToggleShowHidden(ctx)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	if v {
		notifySuccess(a.out, "Hidden dharmas and tasks are shown.")
	} else {
		notifySuccess(a.out, "Hidden dharmas and tasks are no longer shown.")
	}
	return nil
}

func (a *App) ToggleSidebar(ctx context.Context) error {
	v, err := a.session.ToggleSidebarCollapsed(ctx)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	if v {
		notifySuccess(a.out, "Sidebar collapsed.")
	} else {
		notifySuccess(a.out, "Sidebar expanded.")
	}
	return nil
}
