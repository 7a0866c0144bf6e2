package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskmaster/internal/model"
	"github.com/nhle/taskmaster/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{
		i.Task.Status,
		i.Task.Priority,
		relativeTime(i.Task.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// TaskDelegate implements list.ItemDelegate for rendering task lines.
type TaskDelegate struct{}

// Height returns the number of lines each item takes.
func (d TaskDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d TaskDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}

	t := ti.Task
	isSelected := index == m.Index()

	var prefix string
	if t.Status == model.StatusCompleted {
		prefix = "✓"
	} else {
		prefix = "○"
	}

	statusBadge := theme.StatusStyle(t.Status).Render(t.Status)
	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	dueDateStr := ""
	if t.DueDate != nil {
		dueDateStr = theme.DueDateStyle.Render(" " + t.DueDate.Format("Jan 02"))
	}

	overdueStr := ""
	if t.IsOverdue() {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	line := fmt.Sprintf(
		"%s %s %s %s%s%s",
		prefix, statusBadge, priBadge, t.Title, dueDateStr, overdueStr,
	)

	if t.Status == model.StatusCompleted {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p string) string {
	switch p {
	case model.PriorityHigh:
		return "HI"
	case model.PriorityMedium:
		return "MED"
	case model.PriorityLow:
		return "LOW"
	default:
		return "?"
	}
}
