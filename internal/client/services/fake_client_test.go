package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "oriontask.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func dharma(id int64, hidden bool) models.Dharma {
	return models.Dharma{ID: id, Name: "dharma", Color: "#112233", Hidden: hidden}
}

func task(id int64, d models.Dharma, status models.TaskStatus) models.Task {
	return models.Task{ID: id, Dharma: d, Title: "task title", Status: status,
		KarmaType: models.KarmaAction, EffortLevel: models.EffortLow}
}

func page(tasks ...models.Task) *models.Page[models.Task] {
	return &models.Page[models.Task]{Content: tasks, TotalElements: int64(len(tasks)), TotalPages: 1, First: true, Last: true}
}

var quiet = logging.Discard()

// ---- fake client ----

// fakeClient implements client.Client. Unset hooks return zero values.
type fakeClient struct {
	SignupFn  func(models.SignupRequest) (*models.AuthResponse, error)
	LoginFn   func(models.LoginRequest) (*models.AuthResponse, error)
	GetUserFn func(id string) (*models.User, error)

	GetProfileRet    *models.Profile
	GetProfileErr    error
	UpdateProfileRet *models.Profile
	UpdateProfileErr error

	ListDharmasRet  []models.Dharma
	ListDharmasErr  error
	ListDharmasFn   func(includeHidden bool) ([]models.Dharma, error)
	CreateDharmaFn  func(userID string, in models.DharmaInput) (*models.Dharma, error)
	UpdateDharmaFn  func(id int64, in models.DharmaInput) (*models.Dharma, error)
	ToggleHiddenFn  func(id int64) (*models.Dharma, error)
	DeleteDharmaErr error

	CreateTaskFn   func(dharmaID int64, in models.TaskInput) (*models.Task, error)
	UpdateTaskFn   func(id int64, in models.TaskInput) (*models.Task, error)
	ChangeStatusFn func(id int64, status models.TaskStatus) (*models.Task, error)
	MarkDoneFn     func(id int64) (*models.Task, error)
	MoveToNowFn    func(id int64) (*models.Task, error)
	ListByDharmaFn func(dharmaID int64, status models.TaskStatus, p models.PageRequest) (*models.Page[models.Task], error)
	ListByUserFn   func(userID string, status models.TaskStatus, p models.PageRequest) (*models.Page[models.Task], error)
	DeleteTaskErr  error

	// call records
	Calls             []string
	LastIncludeHidden bool
	LastUpdateProfile models.ProfileUpdate
	StatusChanges     []int64
	LastGetUserID     string
	LastDeletedDharma int64
	LastDeletedTask   int64
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) rec(name string) { f.Calls = append(f.Calls, name) }

func (f *fakeClient) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	f.rec("Signup")
	if f.SignupFn == nil {
		return nil, nil
	}
	return f.SignupFn(req)
}

func (f *fakeClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	f.rec("Login")
	if f.LoginFn == nil {
		return nil, nil
	}
	return f.LoginFn(req)
}

func (f *fakeClient) GetUser(ctx context.Context, id string) (*models.User, error) {
	f.rec("GetUser")
	f.LastGetUserID = id
	if f.GetUserFn == nil {
		return nil, nil
	}
	return f.GetUserFn(id)
}

func (f *fakeClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.rec("GetUserByUsername")
	return nil, nil
}

func (f *fakeClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	f.rec("GetProfile")
	return f.GetProfileRet, f.GetProfileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	f.rec("UpdateProfile")
	f.LastUpdateProfile = upd
	return f.UpdateProfileRet, f.UpdateProfileErr
}

func (f *fakeClient) ListDharmasByUser(ctx context.Context, userID string, includeHidden bool) ([]models.Dharma, error) {
	f.rec("ListDharmasByUser")
	f.LastIncludeHidden = includeHidden
	if f.ListDharmasFn != nil {
		return f.ListDharmasFn(includeHidden)
	}
	return f.ListDharmasRet, f.ListDharmasErr
}

func (f *fakeClient) CreateDharma(ctx context.Context, userID string, in models.DharmaInput) (*models.Dharma, error) {
	f.rec("CreateDharma")
	if f.CreateDharmaFn == nil {
		return nil, nil
	}
	return f.CreateDharmaFn(userID, in)
}

func (f *fakeClient) UpdateDharma(ctx context.Context, id int64, in models.DharmaInput) (*models.Dharma, error) {
	f.rec("UpdateDharma")
	if f.UpdateDharmaFn == nil {
		return nil, nil
	}
	return f.UpdateDharmaFn(id, in)
}

func (f *fakeClient) ToggleDharmaHidden(ctx context.Context, id int64) (*models.Dharma, error) {
	f.rec("ToggleDharmaHidden")
	if f.ToggleHiddenFn == nil {
		return nil, nil
	}
	return f.ToggleHiddenFn(id)
}

func (f *fakeClient) DeleteDharma(ctx context.Context, id int64) error {
	f.rec("DeleteDharma")
	f.LastDeletedDharma = id
	return f.DeleteDharmaErr
}

func (f *fakeClient) CreateTask(ctx context.Context, dharmaID int64, in models.TaskInput) (*models.Task, error) {
	f.rec("CreateTask")
	if f.CreateTaskFn == nil {
		return nil, nil
	}
	return f.CreateTaskFn(dharmaID, in)
}

func (f *fakeClient) UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error) {
	f.rec("UpdateTask")
	if f.UpdateTaskFn == nil {
		return nil, nil
	}
	return f.UpdateTaskFn(id, in)
}

func (f *fakeClient) ChangeTaskStatus(ctx context.Context, id int64, status models.TaskStatus) (*models.Task, error) {
	f.rec("ChangeTaskStatus")
	f.StatusChanges = append(f.StatusChanges, id)
	if f.ChangeStatusFn == nil {
		return nil, nil
	}
	return f.ChangeStatusFn(id, status)
}

func (f *fakeClient) MarkTaskDone(ctx context.Context, id int64) (*models.Task, error) {
	f.rec("MarkTaskDone")
	if f.MarkDoneFn == nil {
		return nil, nil
	}
	return f.MarkDoneFn(id)
}

func (f *fakeClient) MoveTaskToNow(ctx context.Context, id int64) (*models.Task, error) {
	f.rec("MoveTaskToNow")
	if f.MoveToNowFn == nil {
		return nil, nil
	}
	return f.MoveToNowFn(id)
}

func (f *fakeClient) ListTasksByDharma(ctx context.Context, dharmaID int64, p models.PageRequest) (*models.Page[models.Task], error) {
	f.rec("ListTasksByDharma")
	if f.ListByDharmaFn == nil {
		return nil, nil
	}
	return f.ListByDharmaFn(dharmaID, "", p)
}

func (f *fakeClient) ListTasksByDharmaAndStatus(ctx context.Context, dharmaID int64, status models.TaskStatus, p models.PageRequest) (*models.Page[models.Task], error) {
	f.rec("ListTasksByDharmaAndStatus")
	if f.ListByDharmaFn == nil {
		return nil, nil
	}
	return f.ListByDharmaFn(dharmaID, status, p)
}

func (f *fakeClient) ListTasksByUserAndStatus(ctx context.Context, userID string, status models.TaskStatus, p models.PageRequest) (*models.Page[models.Task], error) {
	f.rec("ListTasksByUserAndStatus")
	if f.ListByUserFn == nil {
		return nil, nil
	}
	return f.ListByUserFn(userID, status, p)
}

func (f *fakeClient) DeleteTask(ctx context.Context, id int64) error {
	f.rec("DeleteTask")
	f.LastDeletedTask = id
	return f.DeleteTaskErr
}

func (f *fakeClient) count(name string) int {
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}
