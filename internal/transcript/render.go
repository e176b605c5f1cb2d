// internal/transcript/render.go
package transcript

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/tidwall/gjson"
)

// Tool results up to this many lines render inline; longer ones collapse
// into a <details> block.
const inlineResultMaxLines = 4

// User messages starting with this marker are context-continuation
// summaries injected by the client, not something the user typed.
const sessionContinuedPrefix = "This session is being continued from a previous"

var toolUseErrorTag = regexp.MustCompile(`</?tool_use_error>`)

// RenderBody renders grouped items into the markdown conversation body.
//
// Two passes: the first collects tool results by tool_use_id, the second
// renders each tool_use paired with its result. Pairing by id keeps each
// call visually grouped with its own result even for parallel calls.
func RenderBody(items []Item) string {
	index := buildToolResultIndex(items)

	var lines []string
	blankBefore := func() {
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
	}

	for _, item := range items {
		switch it := item.(type) {
		case UserItem:
			if strings.HasPrefix(it.Text, sessionContinuedPrefix) {
				lines = append(lines,
					"**Context restored from previous session (ran out of context):**",
					"<details>",
					"<summary>Session summary</summary>",
					"",
					blockQuote(it.Text),
					"",
					"</details>",
					"<br>",
					"",
				)
			} else {
				lines = append(lines, "**User:**\n"+blockQuote(it.Text), "")
			}

		case ToolResultItem:
			// consumed via the index during tool_use rendering

		case AssistantItem:
			for _, block := range it.Blocks {
				switch block.Type {
				case "thinking":
					// never rendered

				case "text":
					text := unescapeHTML(strings.TrimSpace(block.Text))
					if text == "" {
						continue
					}
					blankBefore()
					lines = append(lines, text, "")

				case "tool_use":
					name := block.Name
					if name == "" {
						name = "unknown"
					}
					header := toolHeader(name, block.Input)
					result := index[block.ID]

					if name == "Edit" {
						lines = renderEdit(lines, header, block.Input, result)
					} else {
						lines = renderToolWithResult(lines, header, result)
					}
				}
			}
			blankBefore()
		}
	}

	return strings.Join(lines, "\n")
}

// renderEdit renders an Edit call: header, then a unified diff of the
// old/new strings, then the result inline regardless of length.
func renderEdit(lines []string, header string, input json.RawMessage, result resultEntry) []string {
	lines = append(lines, header)

	in := gjson.ParseBytes(input)
	oldStr := in.Get("old_string").String()
	newStr := in.Get("new_string").String()
	if oldStr != "" || newStr != "" {
		if body := unifiedDiffBody(oldStr, newStr); len(body) > 0 {
			lines = append(lines, "```diff")
			lines = append(lines, body...)
			lines = append(lines, "```")
		}
	}

	if result.content != "" {
		lines = renderResultInline(lines, cleanResultText(result.content), result.isError)
	} else {
		lines = append(lines, "")
	}
	return lines
}

// renderToolWithResult pairs a tool call header with its result. Short
// results sit under the header with a ⎿ marker; long ones collapse into a
// <details> block whose summary is the header itself.
func renderToolWithResult(lines []string, header string, result resultEntry) []string {
	content := ""
	if result.content != "" {
		content = cleanResultText(result.content)
	}

	if content == "" {
		return append(lines, header, "")
	}

	if strings.Count(content, "\n")+1 <= inlineResultMaxLines {
		lines = append(lines, header)
		return renderResultInline(lines, content, result.isError)
	}
	return renderResultCollapsed(lines, content, escapeHTML(header), result.isError)
}

func renderResultInline(lines []string, content string, isError bool) []string {
	prefix := "  ⎿  "
	if isError {
		prefix = "  ⎿  **Error:** "
	}
	for i, resultLine := range strings.Split(content, "\n") {
		if i == 0 {
			lines = append(lines, prefix+resultLine)
		} else {
			lines = append(lines, "     "+resultLine)
		}
	}
	return append(lines, "")
}

func renderResultCollapsed(lines []string, content, summary string, isError bool) []string {
	if isError {
		summary = "<b>Error:</b> " + summary
	}
	return append(lines,
		"<details>",
		"<summary>"+summary+"</summary>",
		"<pre><code>"+escapeHTML(content)+"</code></pre>",
		"</details>",
		"<br>",
		"",
	)
}

// unifiedDiffBody computes a line diff with two lines of context and drops
// the ---/+++ file header lines.
func unifiedDiffBody(oldStr, newStr string) []string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       diffLines(oldStr),
		B:       diffLines(newStr),
		Context: 2,
	})
	if err != nil || text == "" {
		return nil
	}
	var body []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}
		body = append(body, line)
	}
	return body
}

// diffLines splits on newlines keeping terminators, without manufacturing
// a trailing empty line (difflib.SplitLines would). LF, CRLF, and lone CR
// all count as line breaks, so edit strings differing only in newline form
// diff as equal.
func diffLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i]+"\n")
			start = i + 1
		case '\r':
			lines = append(lines, s[start:i]+"\n")
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:]+"\n")
	}
	return lines
}

// cleanResultText strips internal wrapper tags like <tool_use_error> that
// leak into raw result text.
func cleanResultText(text string) string {
	return strings.TrimSpace(toolUseErrorTag.ReplaceAllString(text, ""))
}

func blockQuote(text string) string {
	quoted := strings.Split(text, "\n")
	for i := range quoted {
		quoted[i] = "> " + quoted[i]
	}
	return strings.Join(quoted, "\n")
}

func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	return strings.ReplaceAll(text, ">", "&gt;")
}

// unescapeHTML reverses escapeHTML for assistant prose. Text that was never
// escaped upstream but legitimately contains &lt;/&gt; sequences gets
// altered here; preserved as-is because downstream output depends on it.
func unescapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	return strings.ReplaceAll(text, "&amp;", "&")
}
