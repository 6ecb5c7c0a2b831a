package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"seasonpass/internal/content"
	"seasonpass/internal/unlock"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 16

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", tag)
	return paint(line, statusKindColor(kind), colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func renderSectionHeader(title string, colorize bool) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return paint(line, ansiBlue, colorize)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// availabilityText describes a season's lock state for tables and the menu.
func availabilityText(st unlock.Status, colorize bool) string {
	switch st.Availability {
	case unlock.Accessible:
		label := "open"
		if st.UnlockedByCode {
			label = "open (code)"
		}
		return paint(label, ansiGreen, colorize)
	case unlock.LockedWaiting:
		return paint("locked "+unlock.FormatRemaining(st.Remaining), ansiYellow, colorize)
	default:
		return paint(fmt.Sprintf("needs season %d", st.Unit-1), ansiRed, colorize)
	}
}

func renderSeasonTable(catalog *content.Catalog, statuses []unlock.Status, colorize bool) string {
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		title := ""
		if season, ok := catalog.Season(st.Unit); ok {
			title = season.Title
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", st.Unit),
			title,
			availabilityText(st, colorize),
			yesNo(st.Completed),
		})
	}
	return renderTable("Seasons", []column{
		{header: "#", right: true},
		{header: "Title"},
		{header: "Status"},
		{header: "Watched"},
	}, rows)
}
