package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
)

var (
	colorHeader  = color.New(color.Bold)
	colorSuccess = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgYellow)
	colorFailure = color.New(color.FgRed, color.Bold)
	colorMuted   = color.New(color.FgWhite, color.Faint)
	colorTime    = color.New(color.FgCyan)
	colorUrgent  = color.New(color.FgRed)
	colorHigh    = color.New(color.FgYellow)
)

// Header formats a section title.
func Header(s string) string { return colorHeader.Sprint(s) }

// Success formats a confirmation.
func Success(s string) string { return colorSuccess.Sprint(s) }

// Warn formats an advisory.
func Warn(s string) string { return colorWarn.Sprint(s) }

// Failure formats an error label.
func Failure(s string) string { return colorFailure.Sprint(s) }

// Muted formats secondary information.
func Muted(s string) string { return colorMuted.Sprint(s) }

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Rule prints a horizontal separator.
func Rule(w io.Writer) {
	fmt.Fprintln(w, Muted(strings.Repeat("-", 60)))
}

// FormatTask renders one task on a single line:
//
//	[ ] 09:00-09:45  Write report (45m) high  a1b2c3d4
func FormatTask(t queries.TaskDTO) string {
	var b strings.Builder
	if t.IsCompleted {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	switch {
	case t.DueTime != "":
		b.WriteString(colorTime.Sprintf("%s-%s", t.DueTime, t.EndTime))
		b.WriteString("  ")
	case t.DueDate != "":
		b.WriteString(Muted("anytime    "))
		b.WriteString(" ")
	}
	title := t.Title
	if t.IsProject {
		title = colorHeader.Sprint(title)
	}
	b.WriteString(title)
	fmt.Fprintf(&b, " (%s)", t.Duration)
	switch t.Priority {
	case "urgent":
		b.WriteString(" " + colorUrgent.Sprint("urgent"))
	case "high":
		b.WriteString(" " + colorHigh.Sprint("high"))
	}
	if t.Category != "" {
		b.WriteString(" " + Muted("#"+t.Category))
	}
	b.WriteString("  " + Muted(ShortID(t.ID.String())))
	return b.String()
}

// ShortID returns the prefix of an id shown in listings.
func ShortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}
