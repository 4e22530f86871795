package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/oriontask/internal/logging"
	"github.com/google/uuid"
)

// SessionService owns the logged-in identity and the UI preferences.
//
// Identity is restored once per process by LoadUserFromStorage; until that
// has run Hydrated reports false. Each preference is stored under its own
// key and loaded and toggled on its own.
type SessionService interface {
	User() *models.User
	SetUser(ctx context.Context, u *models.User) error
	Hydrated() bool
	LoadUserFromStorage(ctx context.Context) error

	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool

	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error)

	Theme() models.Theme
	LoadTheme(ctx context.Context) (models.Theme, error)
	ToggleTheme(ctx context.Context) (models.Theme, error)

	ShowHidden() bool
	LoadShowHidden(ctx context.Context) (bool, error)
	ToggleShowHidden(ctx context.Context) (bool, error)

	SidebarCollapsed() bool
	LoadSidebarCollapsed(ctx context.Context) (bool, error)
	ToggleSidebarCollapsed(ctx context.Context) (bool, error)
}

type sessionService struct {
	client      client.Client
	prefs       metadata.Repository
	credentials *CredentialStore
	store       *Store
	log         logging.Logger

	mu               sync.RWMutex
	user             *models.User
	hydrated         bool
	theme            models.Theme
	showHidden       bool
	sidebarCollapsed bool
}

// NewSessionService wires the session to the API client, the preference
// repository, the credential vault and the cache it resets on logout.
func NewSessionService(c client.Client, prefs metadata.Repository, creds *CredentialStore, store *Store, log logging.Logger) SessionService {
	return &sessionService{
		client:      c,
		prefs:       prefs,
		credentials: creds,
		store:       store,
		log:         log,
		theme:       models.ThemeLight,
	}
}

func (s *sessionService) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser sets the identity and persists its id; nil clears both.
func (s *sessionService) SetUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	if u == nil {
		s.user = nil
	} else {
		cp := *u
		s.user = &cp
	}
	s.mu.Unlock()

	if u == nil {
		return s.prefs.Delete(ctx, metadata.KeyUserID)
	}
	return metadata.SetString(ctx, s.prefs, metadata.KeyUserID, u.ID)
}

func (s *sessionService) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

func (s *sessionService) markHydrated() {
	s.mu.Lock()
	s.hydrated = true
	s.mu.Unlock()
}

// LoadUserFromStorage restores the identity from the stored user id. A
// missing, malformed or unresolvable id leaves the session logged out. The
// session is marked hydrated in every case; later calls do nothing.
func (s *sessionService) LoadUserFromStorage(ctx context.Context) error {
	if s.Hydrated() {
		return nil
	}
	defer s.markHydrated()

	id, err := metadata.GetString(ctx, s.prefs, metadata.KeyUserID)
	if err != nil {
		return fmt.Errorf("read user id: %w", err)
	}
	if id == "" {
		return nil
	}

	if _, err := uuid.Parse(id); err != nil {
		s.log.Warn(ctx, "stored user id is not a uuid, dropping it", "user_id", id)
		return s.SetUser(ctx, nil)
	}

	u, err := s.client.GetUser(ctx, id)
	if err == nil && u == nil {
		err = ErrEmptyResult
	}
	if err != nil {
		s.log.Warn(ctx, "failed to restore user", "user_id", id, "error", err)
		if clearErr := s.SetUser(ctx, nil); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return fmt.Errorf("restore user: %w", err)
	}

	return s.SetUser(ctx, u)
}

func (s *sessionService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	auth, err := s.client.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.startSession(ctx, auth)
}

func (s *sessionService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	auth, err := s.client.Signup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return s.startSession(ctx, auth)
}

func (s *sessionService) startSession(ctx context.Context, auth *models.AuthResponse) (*models.User, error) {
	if auth == nil || auth.Token == "" {
		return nil, ErrEmptyResult
	}

	if err := s.credentials.Save(ctx, *auth); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	u := &models.User{ID: auth.ID, Username: auth.Username, Name: auth.Name}
	if err := s.SetUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user id: %w", err)
	}

	s.store.Reset()
	s.log.Info(ctx, "session started", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Logout drops the identity, the stored credentials and the cached
// collections.
func (s *sessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.store.Reset()

	if err := s.credentials.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *sessionService) IsAuthenticated(ctx context.Context) bool {
	ok, err := s.credentials.IsAuthenticated(ctx)
	if err != nil {
		s.log.Warn(ctx, "cannot read credentials", "error", err)
		return false
	}
	return ok
}

func (s *sessionService) GetProfile(ctx context.Context) (*models.Profile, error) {
	if s.User() == nil {
		return nil, ErrNotLoggedIn
	}

	p, err := s.client.GetProfile(ctx)
	if err == nil && p == nil {
		err = ErrEmptyResult
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// UpdateProfile validates the change locally, including the password
// policy, before sending it. The session identity follows the new name and
// username.
func (s *sessionService) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	current := s.User()
	if current == nil {
		return nil, ErrNotLoggedIn
	}
	if upd.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", models.ErrValidation)
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}

	p, err := s.client.UpdateProfile(ctx, upd)
	if err == nil && p == nil {
		err = ErrEmptyResult
	}
	if err != nil {
		s.log.Error(ctx, "profile update failed", "user_id", current.ID, "error", err)
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.mu.Lock()
	if s.user != nil && s.user.ID == p.ID {
		s.user.Name = p.Name
		s.user.Username = p.Username
		s.user.Email = p.Email
	}
	s.mu.Unlock()
	return p, nil
}

func (s *sessionService) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *sessionService) LoadTheme(ctx context.Context) (models.Theme, error) {
	v, err := metadata.GetString(ctx, s.prefs, metadata.KeyTheme)
	if err != nil {
		return s.Theme(), err
	}
	t := models.ParseTheme(v)

	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	return t, nil
}

func (s *sessionService) ToggleTheme(ctx context.Context) (models.Theme, error) {
	s.mu.Lock()
	s.theme = s.theme.Toggle()
	t := s.theme
	s.mu.Unlock()

	return t, metadata.SetString(ctx, s.prefs, metadata.KeyTheme, string(t))
}

func (s *sessionService) ShowHidden() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showHidden
}

func (s *sessionService) LoadShowHidden(ctx context.Context) (bool, error) {
	v, err := metadata.GetBool(ctx, s.prefs, metadata.KeyShowHidden, false)
	if err != nil {
		return s.ShowHidden(), err
	}

	s.mu.Lock()
	s.showHidden = v
	s.mu.Unlock()
	return v, nil
}

// ToggleShowHidden flips and persists the flag, then refetches the
// Dharmas of the logged-in user with the new value.
func (s *sessionService) ToggleShowHidden(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.showHidden = !s.showHidden
	v := s.showHidden
	s.mu.Unlock()

	if err := metadata.SetBool(ctx, s.prefs, metadata.KeyShowHidden, v); err != nil {
		return v, err
	}

	if u := s.User(); u != nil {
		if err := s.store.FetchDharmas(ctx, u.ID, v); err != nil {
			return v, err
		}
	}
	return v, nil
}

func (s *sessionService) SidebarCollapsed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarCollapsed
}

func (s *sessionService) LoadSidebarCollapsed(ctx context.Context) (bool, error) {
	v, err := metadata.GetBool(ctx, s.prefs, metadata.KeySidebarCollapsed, false)
	if err != nil {
		return s.SidebarCollapsed(), err
	}

	s.mu.Lock()
	s.sidebarCollapsed = v
	s.mu.Unlock()
	return v, nil
}

func (s *sessionService) ToggleSidebarCollapsed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.sidebarCollapsed = !s.sidebarCollapsed
	v := s.sidebarCollapsed
	s.mu.Unlock()

	return v, metadata.SetBool(ctx, s.prefs, metadata.KeySidebarCollapsed, v)
}
