// internal/transcript/toolheader.go
package transcript

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// toolHeader formats a one-line header for a tool invocation, matching the
// chat UI presentation per tool. Unknown tools fall back to a bare bullet
// plus the name.
func toolHeader(name string, input json.RawMessage) string {
	in := gjson.ParseBytes(input)
	if len(input) > 0 && string(input) != "null" && !in.IsObject() {
		return "● " + name
	}

	switch name {
	case "Bash":
		cmd, _, _ := strings.Cut(in.Get("command").String(), "\n")
		return "● `Bash(" + truncate(cmd, 120) + ")`"
	case "Read":
		return "● `Read(" + in.Get("file_path").String() + ")`"
	case "Write":
		return "● `Write(" + in.Get("file_path").String() + ")`"
	case "Edit":
		return "● `Update(" + in.Get("file_path").String() + ")`"
	case "Glob":
		return "● `Glob(" + in.Get("pattern").String() + ")`"
	case "Grep":
		if pattern := in.Get("pattern").String(); pattern != "" {
			return "● Searched for `" + truncate(pattern, 80) + "`"
		}
		return "● Searched codebase"
	case "WebFetch":
		return "● `WebFetch(" + truncate(in.Get("url").String(), 100) + ")`"
	case "WebSearch":
		return "● `WebSearch(" + in.Get("query").String() + ")`"
	case "Task":
		desc := truncate(in.Get("description").String(), 100)
		if agent := in.Get("subagent_type").String(); agent != "" {
			return "● `Task(" + agent + ": " + desc + ")`"
		}
		return "● `Task(" + desc + ")`"
	}
	return "● " + name
}

// truncate cuts text to max runes, appending an ellipsis when it was longer.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
