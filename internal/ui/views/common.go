package views

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/cadence/internal/db"
	"github.com/tgienger/cadence/internal/lifecycle"
	"github.com/tgienger/cadence/internal/recurrence"
	"github.com/tgienger/cadence/internal/ui/styles"
)

// Env is what the views need from the rest of the program
type Env struct {
	DB         *db.DB
	Controller *lifecycle.Controller
	Scheduler  recurrence.Scheduler
	Actor      string
	Logger     *slog.Logger
}

// errMsg reports a failed command; views show it as a flash line
type errMsg struct {
	err error
}

func (e Env) fail(err error, msg string, args ...any) tea.Msg {
	e.Logger.Error(msg, append(args, "error", err)...)
	return errMsg{err: err}
}

// opTimeout bounds each database call made from the UI
const opTimeout = 5 * time.Second

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// placeCenter centers content within the content width, then centers that
// in the terminal
func placeCenter(content string, width, height int) string {
	centered := lipgloss.Place(styles.ContentWidth(width), height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

// confirmButtons renders the Y / N pair used by every confirmation dialog
func confirmButtons(s *styles.Styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.ButtonPrimary.Render(" Y - Yes "),
		"  ",
		s.Button.Render(" N - No "),
	)
}

// dueLabel renders a due date relative to today
func dueLabel(s *styles.Styles, due *time.Time, today time.Time) string {
	if due == nil {
		return s.TitleMuted.Render("no due date")
	}
	text := due.Format("Mon Jan 2")
	switch d := recurrence.Day(*due); {
	case d.Before(today):
		return s.Overdue.Render(text + " (overdue)")
	case d.Equal(today):
		return s.DueToday.Render("today")
	case d.Equal(today.AddDate(0, 0, 1)):
		return s.DueToday.Render("tomorrow")
	}
	return s.TitleMuted.Render(text)
}
