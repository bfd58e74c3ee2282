package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/camphub/internal/model"
	"github.com/nhle/camphub/internal/route"
	"github.com/nhle/camphub/internal/theme"
	"github.com/nhle/camphub/internal/ui/notifications"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func defaultFormat() string {
	if stdoutIsTerminal() {
		return formatTable
	}
	return formatJSON
}

// listedNotification is the JSON shape printed by `camphub list`.
type listedNotification struct {
	model.Notification
	Route string `json:"route"`
}

func printNotifications(w io.Writer, list []model.Notification, isAdmin bool, format string, now time.Time) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		return printNotifications(w, list, isAdmin, defaultFormat(), now)
	case formatJSON:
		out := make([]listedNotification, len(list))
		for i, n := range list {
			out[i] = listedNotification{Notification: n, Route: route.Resolve(n, isAdmin)}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	case formatTable:
		_, err := io.WriteString(w, notificationTable(list, isAdmin, now)+"\n")
		return err
	default:
		return errors.New("invalid --format value")
	}
}

func notificationTable(list []model.Notification, isAdmin bool, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, n := range list {
		mark := " "
		if !n.IsRead {
			mark = "●"
		}
		rows = append(rows, []string{
			n.ID,
			mark,
			notifications.TypeLabel(n.Type),
			n.Title,
			notifications.RelativeTime(n.CreatedAt, now),
			route.Resolve(n, isAdmin),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("ID", "", "TYPE", "TITLE", "AGE", "ROUTE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
