package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/config"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/oriontask/internal/client/services"
	"github.com/dmitrijs2005/oriontask/internal/cryptox"
	"github.com/dmitrijs2005/oriontask/internal/filex"
	"github.com/dmitrijs2005/oriontask/internal/logging"
	"github.com/fatih/color"

	_ "modernc.org/sqlite"
)

// App is the application-state container: one session and one cache for
// the lifetime of the process.
type App struct {
	config  *config.Config
	db      *sql.DB
	log     logging.Logger
	session services.SessionService
	store   *services.Store
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp prepares the data directory, opens the local database and wires
// the services against the configured backend.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if err := filex.EnsureDir(c.DataDir); err != nil {
		return nil, err
	}

	secret, err := filex.ReadOrCreateSecret(c.SecretPath(), cryptox.KeySize)
	if err != nil {
		return nil, fmt.Errorf("key file: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath())
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath(), "error", err)
		return nil, err
	}

	a := &App{
		config: c,
		db:     db,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    color.Output,
	}

	creds := services.NewCredentialStore(db, secret, log.With("component", "vault"))
	api := client.NewHTTPClient(c.ServerBaseURL,
		client.WithCredentials(creds),
		client.WithUnauthorizedHook(a.onUnauthorized),
		client.WithLogger(log.With("component", "api")),
	)

	a.store = services.NewStore(api, services.NewFocusPolicy(api, log.With("component", "focus")), log.With("component", "store"))
	a.session = services.NewSessionService(api, metadata.NewSQLiteRepository(db), creds, a.store, log.With("component", "session"))
	return a, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Start restores preferences and the previous identity. It must run before
// any command that needs the user.
func (a *App) Start(ctx context.Context) {
	if _, err := a.session.LoadTheme(ctx); err != nil {
		a.log.Warn(ctx, "cannot load theme", "error", err)
	}
	if _, err := a.session.LoadShowHidden(ctx); err != nil {
		a.log.Warn(ctx, "cannot load show-hidden flag", "error", err)
	}
	if _, err := a.session.LoadSidebarCollapsed(ctx); err != nil {
		a.log.Warn(ctx, "cannot load sidebar state", "error", err)
	}

	if err := a.session.LoadUserFromStorage(ctx); err != nil {
		notifyError(a.out, fmt.Errorf("previous session could not be restored: %w", err))
	}

	if u := a.session.User(); u != nil {
		_ = a.store.FetchDharmas(ctx, u.ID, a.session.ShowHidden())
	}
}

// Run restores the session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to OrionTask CLI (type 'help' for commands)")
	a.Start(ctx)
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Welcome back, %s.\n", displayName(u))
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.session.User() != nil
}

func (a *App) status() string {
	if !a.session.Hydrated() {
		return "(loading)"
	}
	if u := a.session.User(); u != nil {
		return "(" + u.Username + ")"
	}
	return "(guest)"
}

// requireUser gates every command that reads or changes domain data.
func (a *App) requireUser() (*models.User, error) {
	if !a.session.Hydrated() {
		return nil, services.ErrNotHydrated
	}
	u := a.session.User()
	if u == nil {
		return nil, services.ErrNotLoggedIn
	}
	return u, nil
}

// onUnauthorized runs after the backend rejected the token; the vault is
// already cleared by then.
func (a *App) onUnauthorized(ctx context.Context) {
	hadUser := a.session.User() != nil
	a.store.Reset()
	if err := a.session.SetUser(ctx, nil); err != nil {
		a.log.Error(ctx, "failed to drop identity after 401", "error", err)
	}
	if hadUser {
		notifyWarn(a.out, "Your session has expired. Please log in again.")
	}
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
