package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/oriontask/internal/client/client"
	"github.com/dmitrijs2005/oriontask/internal/client/models"
	"github.com/dmitrijs2005/oriontask/internal/client/services"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

// palette is the set of styles for one UI theme.
type palette struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Hidden  lipgloss.Style
	Status  map[models.TaskStatus]lipgloss.Style
	Default lipgloss.Style
}

func paletteFor(t models.Theme) palette {
	if t == models.ThemeDark {
		return palette{
			Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
			Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Hidden: lipgloss.NewStyle().Faint(true).Italic(true),
			Status: map[models.TaskStatus]lipgloss.Style{
				models.StatusNow:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
				models.StatusNext:    lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
				models.StatusWaiting: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
				models.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true),
			},
			Default: lipgloss.NewStyle(),
		}
	}
	return palette{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("236")),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Hidden: lipgloss.NewStyle().Faint(true).Italic(true),
		Status: map[models.TaskStatus]lipgloss.Style{
			models.StatusNow:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("161")),
			models.StatusNext:    lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
			models.StatusWaiting: lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
			models.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Strikethrough(true),
		},
		Default: lipgloss.NewStyle(),
	}
}

func (p palette) status(s models.TaskStatus) string {
	if st, ok := p.Status[s]; ok {
		return st.Render(string(s))
	}
	return p.Default.Render(string(s))
}

func swatch(hex string) string {
	if hex == "" {
		return " "
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderDharmas(w io.Writer, p palette, ds []models.Dharma) {
	if len(ds) == 0 {
		fmt.Fprintln(w, p.Muted.Render("No dharmas yet. Use 'dharma-add' to create one."))
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 50
	tbl.Wrap = true
	tbl.AddRow("", "ID", "NAME", "DESCRIPTION", "")
	for _, d := range ds {
		flag := ""
		name := d.Name
		if d.Hidden {
			flag = "hidden"
			name = p.Hidden.Render(name)
		}
		tbl.AddRow(swatch(d.Color), d.ID, name, deref(d.Description), p.Muted.Render(flag))
	}
	fmt.Fprintln(w, p.Title.Render(fmt.Sprintf("Dharmas (%d/%d)", len(ds), models.MaxDharmasPerUser)))
	fmt.Fprintln(w, tbl)
}

// renderSidebar is the compact Dharma summary printed above task lists.
func renderSidebar(w io.Writer, p palette, ds []models.Dharma) {
	if len(ds) == 0 {
		return
	}
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		label := fmt.Sprintf("%s %d:%s", swatch(d.Color), d.ID, d.Name)
		if d.Hidden {
			label = p.Hidden.Render(label)
		}
		parts = append(parts, label)
	}
	fmt.Fprintln(w, p.Muted.Render("│ ")+strings.Join(parts, p.Muted.Render("  │ ")))
	fmt.Fprintln(w)
}

func renderTasks(w io.Writer, p palette, title string, ts []models.Task) {
	fmt.Fprintln(w, p.Title.Render(title))
	if len(ts) == 0 {
		fmt.Fprintln(w, p.Muted.Render("No tasks."))
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	tbl.AddRow("ID", "STATUS", "TITLE", "KARMA", "EFFORT", "DHARMA")
	for _, t := range ts {
		title := t.Title
		if t.Hidden {
			title = p.Hidden.Render(title)
		}
		tbl.AddRow(t.ID, p.status(t.Status), title, strings.ToLower(string(t.KarmaType)),
			strings.ToLower(string(t.EffortLevel)), swatch(t.Dharma.Color)+" "+t.Dharma.Name)
	}
	fmt.Fprintln(w, tbl)
}

func renderPageFooter(w io.Writer, p palette, pg *models.Page[models.Task]) {
	if pg == nil || pg.TotalPages <= 1 {
		return
	}
	fmt.Fprintln(w, p.Muted.Render(fmt.Sprintf("page %d of %d, %d tasks in total", pg.Number+1, pg.TotalPages, pg.TotalElements)))
}

func renderProfile(w io.Writer, p palette, pr *models.Profile) {
	tbl := uitable.New()
	tbl.AddRow("Name:", pr.Name)
	tbl.AddRow("Username:", pr.Username)
	tbl.AddRow("Email:", pr.Email)
	tbl.AddRow("Confirmed:", pr.IsConfirmed)
	if !pr.CreatedAt.IsZero() {
		tbl.AddRow("Member since:", pr.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(w, p.Title.Render("Profile"))
	fmt.Fprintln(w, tbl)
}

// errorMessage prefers the server's own message for API failures.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return "You are not logged in. Use 'login' or 'signup' first."
	case errors.Is(err, services.ErrNotHydrated):
		return "Session is still loading, try again in a moment."
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	return err.Error()
}

func notifySuccess(w io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(w, "✓ "+format+"\n", args...)
}

func notifyWarn(w io.Writer, msg string) {
	_, _ = color.New(color.FgYellow).Fprintln(w, "! "+msg)
}

func notifyError(w io.Writer, err error) {
	_, _ = color.New(color.FgRed).Fprintln(w, "✗ "+errorMessage(err))
}
