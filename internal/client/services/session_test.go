package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	db    *sql.DB
	repo  metadata.Repository
	creds *CredentialStore
	store *Store
	fc    *fakeClient
	sess  SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	db := setupDB(t)
	return newSessionFixtureOn(t, db, &fakeClient{})
}

func newSessionFixtureOn(t *testing.T, db *sql.DB, fc *fakeClient) *sessionFixture {
	t.Helper()
	repo := metadata.NewSQLiteRepository(db)
	creds := NewCredentialStore(db, testSecret, quiet)
	store := newTestStore(fc)
	return &sessionFixture{
		db:    db,
		repo:  repo,
		creds: creds,
		store: store,
		fc:    fc,
		sess:  NewSessionService(fc, repo, creds, store, quiet),
	}
}

func loginOK(models.LoginRequest) (*models.AuthResponse, error) {
	return &models.AuthResponse{Token: "tok", ID: userID, Username: "alice", Name: "Alice"}, nil
}

func TestSession_LoadUserFromStorage_NoIDMarksHydrated(t *testing.T) {
	f := newSessionFixture(t)
	require.False(t, f.sess.Hydrated())

	require.NoError(t, f.sess.LoadUserFromStorage(context.Background()))
	require.True(t, f.sess.Hydrated())
	require.Nil(t, f.sess.User())
	require.Equal(t, 0, f.fc.count("GetUser"))
}

func TestSession_LoadUserFromStorage_RestoresUser(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, metadata.SetString(ctx, f.repo, metadata.KeyUserID, userID))
	f.fc.GetUserFn = func(id string) (*models.User, error) {
		return &models.User{ID: id, Username: "alice", Name: "Alice"}, nil
	}

	require.NoError(t, f.sess.LoadUserFromStorage(ctx))
	require.True(t, f.sess.Hydrated())
	require.Equal(t, userID, f.fc.LastGetUserID)
	require.Equal(t, "alice", f.sess.User().Username)
}

func TestSession_LoadUserFromStorage_FailureClearsID(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, metadata.SetString(ctx, f.repo, metadata.KeyUserID, userID))
	f.fc.GetUserFn = func(string) (*models.User, error) {
		return nil, &client.APIError{Message: "User not found", Status: http.StatusNotFound}
	}

	err := f.sess.LoadUserFromStorage(ctx)
	require.ErrorIs(t, err, client.ErrNotFound)
	require.True(t, f.sess.Hydrated())
	require.Nil(t, f.sess.User())

	id, err := metadata.GetString(ctx, f.repo, metadata.KeyUserID)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestSession_LoadUserFromStorage_MalformedIDSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, metadata.SetString(ctx, f.repo, metadata.KeyUserID, "not-a-uuid"))

	require.NoError(t, f.sess.LoadUserFromStorage(ctx))
	require.True(t, f.sess.Hydrated())
	require.Equal(t, 0, f.fc.count("GetUser"))

	id, err := metadata.GetString(ctx, f.repo, metadata.KeyUserID)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestSession_HydrationNeverReverts(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	require.NoError(t, f.sess.LoadUserFromStorage(ctx))

	f.fc.LoginFn = loginOK
	_, err := f.sess.Login(ctx, models.LoginRequest{Login: "alice", Password: "Secret1!x"})
	require.NoError(t, err)
	require.NoError(t, f.sess.Logout(ctx))
	require.NoError(t, f.sess.SetUser(ctx, nil))
	require.True(t, f.sess.Hydrated())

	require.NoError(t, f.sess.LoadUserFromStorage(ctx))
	require.Equal(t, 0, f.fc.count("GetUser"), "second load is a no-op")
}

func TestSession_LoginPersistsCredentialsAndIdentity(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.fc.LoginFn = func(req models.LoginRequest) (*models.AuthResponse, error) {
		require.Equal(t, "alice", req.Login)
		return loginOK(req)
	}

	u, err := f.sess.Login(ctx, models.LoginRequest{Login: "alice", Password: "Secret1!x"})
	require.NoError(t, err)
	require.Equal(t, userID, u.ID)
	require.True(t, f.sess.IsAuthenticated(ctx))

	id, err := metadata.GetString(ctx, f.repo, metadata.KeyUserID)
	require.NoError(t, err)
	require.Equal(t, userID, id)

	summary, err := f.creds.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", summary.Username)
}

func TestSession_LoginValidationMakesNoCall(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.sess.Login(context.Background(), models.LoginRequest{Login: "", Password: "x"})
	require.ErrorIs(t, err, models.ErrValidation)
	require.Equal(t, 0, f.fc.count("Login"))
}

func TestSession_SignupStartsSession(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.fc.SignupFn = func(req models.SignupRequest) (*models.AuthResponse, error) {
		return &models.AuthResponse{Token: "tok", ID: userID, Username: req.Username, Name: req.Name}, nil
	}

	u, err := f.sess.Signup(ctx, models.SignupRequest{Name: "Alice", Username: "alice", Email: "alice@example.com", Password: "Secret1!x"})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.True(t, f.sess.IsAuthenticated(ctx))
}

func TestSession_LoginFailureLeavesLoggedOut(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.fc.LoginFn = func(models.LoginRequest) (*models.AuthResponse, error) {
		return nil, &client.APIError{Message: "Bad credentials", Status: http.StatusBadRequest}
	}

	_, err := f.sess.Login(ctx, models.LoginRequest{Login: "alice", Password: "Secret1!x"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Bad credentials", apiErr.Message)
	require.Nil(t, f.sess.User())
	require.False(t, f.sess.IsAuthenticated(ctx))
}

func TestSession_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.fc.LoginFn = loginOK
	_, err := f.sess.Login(ctx, models.LoginRequest{Login: "alice", Password: "Secret1!x"})
	require.NoError(t, err)
	seedDharmas(t, f.store, f.fc, dharma(1, false))

	require.NoError(t, f.sess.Logout(ctx))
	require.Nil(t, f.sess.User())
	require.False(t, f.sess.IsAuthenticated(ctx))
	require.Empty(t, f.store.Dharmas())

	id, err := metadata.GetString(ctx, f.repo, metadata.KeyUserID)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestSession_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.fc.LoginFn = loginOK
	_, err := f.sess.Login(ctx, models.LoginRequest{Login: "alice", Password: "Secret1!x"})
	require.NoError(t, err)

	t.Run("weak password rejected locally", func(t *testing.T) {
		_, err := f.sess.UpdateProfile(ctx, models.ProfileUpdate{NewPassword: "password"})
		require.ErrorIs(t, err, models.ErrValidation)
		require.Equal(t, 0, f.fc.count("UpdateProfile"))
	})

	t.Run("empty update rejected", func(t *testing.T) {
		_, err := f.sess.UpdateProfile(ctx, models.ProfileUpdate{})
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("identity follows new name", func(t *testing.T) {
		f.fc.UpdateProfileRet = &models.Profile{ID: userID, Username: "alice", Name: "Alice Liddell"}
		p, err := f.sess.UpdateProfile(ctx, models.ProfileUpdate{Name: "Alice Liddell"})
		require.NoError(t, err)
		require.Equal(t, "Alice Liddell", p.Name)
		require.Equal(t, "Alice Liddell", f.sess.User().Name)
		require.Equal(t, "Alice Liddell", f.fc.LastUpdateProfile.Name)
	})
}

func TestSession_ProfileRequiresLogin(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.sess.GetProfile(context.Background())
	require.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = f.sess.UpdateProfile(context.Background(), models.ProfileUpdate{Name: "Bob"})
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSession_ThemeTogglePersists(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	theme, err := f.sess.LoadTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, models.ThemeLight, theme)

	theme, err = f.sess.ToggleTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, models.ThemeDark, theme)

	other := newSessionFixtureOn(t, f.db, &fakeClient{})
	theme, err = other.sess.LoadTheme(ctx)
	require.NoError(t, err)
	require.Equal(t, models.ThemeDark, theme)
}

func TestSession_SidebarTogglePersists(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	v, err := f.sess.ToggleSidebarCollapsed(ctx)
	require.NoError(t, err)
	require.True(t, v)

	other := newSessionFixtureOn(t, f.db, &fakeClient{})
	v, err = other.sess.LoadSidebarCollapsed(ctx)
	require.NoError(t, err)
	require.True(t, v)
	require.True(t, other.sess.SidebarCollapsed())
}

func TestSession_ToggleShowHiddenRefetchesDharmas(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.fc.LoginFn = loginOK
	_, err := f.sess.Login(ctx, models.LoginRequest{Login: "alice", Password: "Secret1!x"})
	require.NoError(t, err)

	f.fc.ListDharmasRet = []models.Dharma{dharma(1, false), dharma(2, true)}

	v, err := f.sess.ToggleShowHidden(ctx)
	require.NoError(t, err)
	require.True(t, v)
	require.Equal(t, 1, f.fc.count("ListDharmasByUser"))
	require.True(t, f.fc.LastIncludeHidden)
	require.Len(t, f.store.Dharmas(), 2)

	stored, err := metadata.GetBool(ctx, f.repo, metadata.KeyShowHidden, false)
	require.NoError(t, err)
	require.True(t, stored)

	v, err = f.sess.ToggleShowHidden(ctx)
	require.NoError(t, err)
	require.False(t, v)
	require.False(t, f.fc.LastIncludeHidden)
}

func TestSession_ToggleShowHiddenLoggedOutSkipsFetch(t *testing.T) {
	f := newSessionFixture(t)

	v, err := f.sess.ToggleShowHidden(context.Background())
	require.NoError(t, err)
	require.True(t, v)
	require.Equal(t, 0, f.fc.count("ListDharmasByUser"))
}

// A 401 from the real HTTP client wipes the vault and runs the hook.
func TestSession_UnauthorizedClearsCredentials(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	creds := NewCredentialStore(db, testSecret, quiet)
	require.NoError(t, creds.Save(ctx, models.AuthResponse{Token: "tok", ID: userID, Username: "alice"}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var sess SessionService
	hookCalled := false
	api := client.NewHTTPClient(srv.URL,
		client.WithCredentials(creds),
		client.WithUnauthorizedHook(func(ctx context.Context) {
			hookCalled = true
			_ = sess.SetUser(ctx, nil)
		}),
	)
	store := NewStore(api, NewFocusPolicy(api, quiet), quiet)
	sess = NewSessionService(api, metadata.NewSQLiteRepository(db), creds, store, quiet)
	require.NoError(t, sess.SetUser(ctx, &models.User{ID: userID, Username: "alice"}))

	err := store.FetchDharmas(ctx, userID, false)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.True(t, hookCalled)
	require.False(t, sess.IsAuthenticated(ctx))
	require.Nil(t, sess.User())

	summary, err := creds.User(ctx)
	require.NoError(t, err)
	require.Nil(t, summary)
}
