package cli

import (
	"context"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/common"
)

func (a *App) Profile(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	p, err := a.session.GetProfile(ctx)
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	renderProfile(a.out, a.palette(), p)
	return nil
}

// EditProfile asks for new name, username and email. Unchanged fields are
// not sent.
func (a *App) EditProfile(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	p, err := a.session.GetProfile(ctx)
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	var upd models.ProfileUpdate
	name, err := GetWithDefault(a.reader, "Name", p.Name, a.out)
	if err != nil {
		return err
	}
	username, err := GetWithDefault(a.reader, "Username", p.Username, a.out)
	if err != nil {
		return err
	}
	email, err := GetWithDefault(a.reader, "Email", p.Email, a.out)
	if err != nil {
		return err
	}

	if name != p.Name {
		upd.Name = name
	}
	if username != p.Username {
		upd.Username = username
	}
	if email != p.Email {
		upd.Email = email
	}
	if upd.IsEmpty() {
		notifyWarn(a.out, "Nothing changed.")
		return nil
	}

	if _, err := a.session.UpdateProfile(ctx, upd); err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Profile updated.")
	return nil
}

// ChangePassword checks the password policy locally before sending it.
func (a *App) ChangePassword(ctx context.Context) error {
	if _, err := a.requireUser(); err != nil {
		notifyError(a.out, err)
		return err
	}

	pw, err := a.readNewPassword("new password")
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	defer common.WipeByteArray(pw)

	if _, err := a.session.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: string(pw)}); err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Password changed.")
	return nil
}
