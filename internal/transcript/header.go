// internal/transcript/header.go
package transcript

import (
	"regexp"
	"strings"
)

var clockRe = regexp.MustCompile(`T(\d{2}:\d{2})`)

// RenderHeader produces the title block prepended to the rendered body:
// session (or subagent) identity, date, and start time when derivable,
// separated from the body by a horizontal rule.
func RenderHeader(opts Options) string {
	shortSession := "unknown"
	if opts.SessionID != "" {
		shortSession = shortID(opts.SessionID)
	}

	dateDisplay := opts.Date
	if dateDisplay == "" {
		dateDisplay = "unknown date"
	}
	if opts.StartTime != "" {
		if m := clockRe.FindStringSubmatch(opts.StartTime); m != nil {
			dateDisplay += " " + m[1]
		}
	}

	var title, meta string
	if opts.AgentType != "" {
		title = "# Subagent: " + opts.AgentType
		if opts.AgentID != "" {
			title += " `" + shortID(opts.AgentID) + "`"
		}
		title += " — " + dateDisplay
		meta = "*Parent session: `" + shortSession + "`*"
	} else {
		title = "# Session `" + shortSession + "` — " + dateDisplay
	}

	parts := []string{title, ""}
	if meta != "" {
		parts = append(parts, meta, "")
	}
	parts = append(parts, "---", "")
	return strings.Join(parts, "\n")
}

// shortID returns the first 8 characters of an identifier.
func shortID(id string) string {
	runes := []rune(id)
	if len(runes) <= 8 {
		return id
	}
	return string(runes[:8])
}
