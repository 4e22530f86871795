package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/services"
)

func (a *App) palette() palette {
	return paletteFor(a.session.Theme())
}

// ListDharmas refetches the user's Dharmas and prints them. Hidden ones are
// included only when show-hidden is on.
func (a *App) ListDharmas(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	if err := a.store.FetchDharmas(ctx, u.ID, a.session.ShowHidden()); err != nil {
		notifyError(a.out, err)
		return err
	}
	renderDharmas(a.out, a.palette(), a.store.Dharmas())
	return nil
}

func (a *App) AddDharma(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	n, err := a.store.DharmaCount(ctx, u.ID)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	if n >= models.MaxDharmasPerUser {
		err := fmt.Errorf("%w: you already have %d dharmas", services.ErrDharmaLimitReached, n)
		notifyError(a.out, err)
		return err
	}

	var in models.DharmaInput
	if in.Name, err = getSimpleText(a.reader, "Dharma name", a.out); err != nil {
		return err
	}
	if in.Description, err = getSimpleText(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}
	if in.Color, err = getSimpleText(a.reader, "Colour as #RRGGBB (optional)", a.out); err != nil {
		return err
	}

	d, err := a.store.CreateDharma(ctx, u.ID, in)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Dharma %q created (id %d).", d.Name, d.ID)
	return nil
}

func (a *App) EditDharma(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	cur, ok := a.store.Dharma(id)
	if !ok {
		err := fmt.Errorf("dharma %d is not loaded; run 'dharmas' first", id)
		notifyError(a.out, err)
		return err
	}

	var in models.DharmaInput
	var err error
	if in.Name, err = GetWithDefault(a.reader, "Dharma name", cur.Name, a.out); err != nil {
		return err
	}
	if in.Description, err = GetWithDefault(a.reader, "Description", deref(cur.Description), a.out); err != nil {
		return err
	}
	if in.Color, err = GetWithDefault(a.reader, "Colour", cur.Color, a.out); err != nil {
		return err
	}

	d, err := a.store.UpdateDharma(ctx, id, in)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Dharma %q updated.", d.Name)
	return nil
}

func (a *App) ToggleDharmaHidden(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	d, err := a.store.ToggleDharmaHidden(ctx, id)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	if d.Hidden {
		notifySuccess(a.out, "Dharma %q is now hidden.", d.Name)
	} else {
		notifySuccess(a.out, "Dharma %q is visible again.", d.Name)
	}
	return nil
}

// DeleteDharma asks for confirmation since the backend deletes the
// Dharma's tasks with it.
func (a *App) DeleteDharma(ctx context.Context, id int64) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	label := fmt.Sprintf("dharma %d", id)
	if d, ok := a.store.Dharma(id); ok {
		label = fmt.Sprintf("dharma %q", d.Name)
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %s and all of its tasks?", label), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.store.DeleteDharma(ctx, id); err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Deleted %s.", label)
	return nil
}
