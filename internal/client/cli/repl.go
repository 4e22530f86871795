package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error

	ListDharmas(ctx context.Context) error
	AddDharma(ctx context.Context) error
	EditDharma(ctx context.Context, id int64) error
	ToggleDharmaHidden(ctx context.Context, id int64) error
	DeleteDharma(ctx context.Context, id int64) error

	ListTasks(ctx context.Context, dharmaID int64, status string) error
	AddTask(ctx context.Context, dharmaID int64) error
	EditTask(ctx context.Context, id int64) error
	ChangeTaskStatus(ctx context.Context, id int64, status string) error
	MoveTaskToNow(ctx context.Context, id int64) error
	MarkTaskDone(ctx context.Context, id int64) error
	DeleteTask(ctx context.Context, id int64) error
	Agora(ctx context.Context) error

	ToggleTheme(ctx context.Context) error
	ToggleShowHidden(ctx context.Context) error
	ToggleSidebar(ctx context.Context) error
}

const (
	guestHelp = "Available commands: signup, login, theme, help, exit"
	userHelp  = `Available commands:
  whoami, profile, profile-edit, password, logout
  dharmas, dharma-add, dharma-edit <id>, dharma-hide <id>, dharma-delete <id>
  tasks <dharma-id> [status], task-add <dharma-id>, task-edit <id>
  task-status <id> <NOW|NEXT|WAITING>, task-now <id>, task-done <id>, task-delete <id>
  agora, theme, show-hidden, sidebar, help, exit`
)

// runREPL starts the read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as arguments, and dispatches to methods on 'a'. The
// loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors to the user.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("orion %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(userHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "signup":
			_ = a.Signup(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "profile":
			_ = a.Profile(ctx)
		case "profile-edit":
			_ = a.EditProfile(ctx)
		case "password":
			_ = a.ChangePassword(ctx)

		case "dharmas":
			_ = a.ListDharmas(ctx)
		case "dharma-add":
			_ = a.AddDharma(ctx)
		case "dharma-edit":
			withID(cmd, args, func(id int64) { _ = a.EditDharma(ctx, id) })
		case "dharma-hide":
			withID(cmd, args, func(id int64) { _ = a.ToggleDharmaHidden(ctx, id) })
		case "dharma-delete":
			withID(cmd, args, func(id int64) { _ = a.DeleteDharma(ctx, id) })

		case "tasks":
			withID(cmd, args, func(id int64) {
				status := ""
				if len(args) > 1 {
					status = args[1]
				}
				_ = a.ListTasks(ctx, id, status)
			})
		case "task-add":
			withID(cmd, args, func(id int64) { _ = a.AddTask(ctx, id) })
		case "task-edit":
			withID(cmd, args, func(id int64) { _ = a.EditTask(ctx, id) })
		case "task-status":
			if len(args) < 2 {
				printlnFn("Usage: task-status <id> <NOW|NEXT|WAITING>")
				continue
			}
			withID(cmd, args, func(id int64) { _ = a.ChangeTaskStatus(ctx, id, args[1]) })
		case "task-now":
			withID(cmd, args, func(id int64) { _ = a.MoveTaskToNow(ctx, id) })
		case "task-done":
			withID(cmd, args, func(id int64) { _ = a.MarkTaskDone(ctx, id) })
		case "task-delete":
			withID(cmd, args, func(id int64) { _ = a.DeleteTask(ctx, id) })
		case "agora":
			_ = a.Agora(ctx)

		case "theme":
			_ = a.ToggleTheme(ctx)
		case "show-hidden":
			_ = a.ToggleShowHidden(ctx)
		case "sidebar":
			_ = a.ToggleSidebar(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// withID parses the first argument as a numeric id and calls fn with it.
func withID(cmd string, args []string, fn func(id int64)) {
	if len(args) == 0 {
		printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		printlnFn(fmt.Sprintf("Invalid id %q", args[0]))
		return
	}
	fn(id)
}
