package client

import (
	"context"

	"github.com/dmitrijs2005/oriontask/internal/client/models"
)

// Client is the remote OrionTask backend as seen by the client application.
type Client interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error)

	ListDharmasByUser(ctx context.Context, userID string, includeHidden bool) ([]models.Dharma, error)
	CreateDharma(ctx context.Context, userID string, in models.DharmaInput) (*models.Dharma, error)
	UpdateDharma(ctx context.Context, dharmaID int64, in models.DharmaInput) (*models.Dharma, error)
	ToggleDharmaHidden(ctx context.Context, dharmaID int64) (*models.Dharma, error)
	DeleteDharma(ctx context.Context, dharmaID int64) error

	CreateTask(ctx context.Context, dharmaID int64, in models.TaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID int64, in models.TaskInput) (*models.Task, error)
	ChangeTaskStatus(ctx context.Context, taskID int64, status models.TaskStatus) (*models.Task, error)
	MarkTaskDone(ctx context.Context, taskID int64) (*models.Task, error)
	MoveTaskToNow(ctx context.Context, taskID int64) (*models.Task, error)
	ListTasksByDharma(ctx context.Context, dharmaID int64, page models.PageRequest) (*models.Page[models.Task], error)
	ListTasksByDharmaAndStatus(ctx context.Context, dharmaID int64, status models.TaskStatus, page models.PageRequest) (*models.Page[models.Task], error)
	ListTasksByUserAndStatus(ctx context.Context, userID string, status models.TaskStatus, page models.PageRequest) (*models.Page[models.Task], error)
	DeleteTask(ctx context.Context, taskID int64) error
}

// Credentials supplies the bearer token and is cleared when the backend
// rejects it.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
