package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/services"
	"github.com/dmitrijs2005/oriontask/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = errors.New("passwords do not match")

// readNewPassword asks for a password twice. The caller wipes the result.
func (a *App) readNewPassword(prompt string) ([]byte, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return nil, err
	}
	again, err := getPassword(a.out, "Repeat "+prompt)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(again)

	if string(pw) != string(again) {
		common.WipeByteArray(pw)
		return nil, errPasswordMismatch
	}
	return pw, nil
}

// Signup prompts for the account fields and creates the account. On
// success the new user is logged in.
func (a *App) Signup(ctx context.Context) error {
	if !a.session.Hydrated() {
		notifyError(a.out, services.ErrNotHydrated)
		return services.ErrNotHydrated
	}

	var req models.SignupRequest
	var err error
	if req.Name, err = getSimpleText(a.reader, "Enter your name", a.out); err != nil {
		return err
	}
	if req.Username, err = getSimpleText(a.reader, "Choose a username", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := a.readNewPassword("password")
	if err != nil {
		notifyError(a.out, err)
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	u, err := a.session.Signup(ctx, req)
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	notifySuccess(a.out, "Account created. Logged in as %s.", u.Username)
	a.afterLogin(ctx, u)
	return nil
}

// Login prompts for a username or email and a password.
func (a *App) Login(ctx context.Context) error {
	if !a.session.Hydrated() {
		notifyError(a.out, services.ErrNotHydrated)
		return services.ErrNotHydrated
	}

	login, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Login(ctx, models.LoginRequest{Login: login, Password: string(password)})
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	notifySuccess(a.out, "Logged in as %s.", u.Username)
	a.afterLogin(ctx, u)
	return nil
}

func (a *App) afterLogin(ctx context.Context, u *models.User) {
	if err := a.store.FetchDharmas(ctx, u.ID, a.session.ShowHidden()); err != nil {
		notifyError(a.out, err)
	}
}

// Logout clears the session, the stored token and the cached data.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		notifyError(a.out, err)
		return err
	}
	notifySuccess(a.out, "Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.requireUser()
	if err != nil {
		notifyError(a.out, err)
		return err
	}

	fmt.Fprintf(a.out, "%s (@%s)\n", displayName(u), u.Username)
	if !a.session.IsAuthenticated(ctx) {
		notifyWarn(a.out, "The stored token is missing or expired; the next request will ask you to log in.")
	}
	return nil
}
