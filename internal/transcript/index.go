// internal/transcript/index.go
package transcript

import (
	"encoding/json"
	"strings"
)

// resultEntry is the flattened, trimmed form of one tool result.
type resultEntry struct {
	content string
	isError bool
}

// buildToolResultIndex walks the item sequence once and maps each tool use
// id to its flattened result text. When two results share an id the later
// one wins; upstream leaves that case unspecified and well-formed
// transcripts don't produce it.
func buildToolResultIndex(items []Item) map[string]resultEntry {
	index := make(map[string]resultEntry)
	for _, item := range items {
		tr, ok := item.(ToolResultItem)
		if !ok {
			continue
		}
		if tr.Result.ToolUseID == "" {
			continue
		}
		index[tr.Result.ToolUseID] = resultEntry{
			content: strings.TrimSpace(flattenResultContent(tr.Result.Content)),
			isError: tr.Result.IsError,
		}
	}
	return index
}

// flattenResultContent extracts display text from a tool_result content
// field, which is either a plain string or a list of result blocks. Text
// blocks contribute their text, images a placeholder, unknown blocks their
// raw JSON. Parts join with newlines.
func flattenResultContent(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		// scalar or object content: fall back to its raw JSON text
		return string(raw)
	}

	var parts []string
	for _, elem := range elems {
		var str string
		if err := json.Unmarshal(elem, &str); err == nil {
			parts = append(parts, str)
			continue
		}
		var block struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}
		if err := json.Unmarshal(elem, &block); err != nil {
			continue
		}
		switch block.Type {
		case "text":
			parts = append(parts, block.Text)
		case "image":
			parts = append(parts, "[image]")
		default:
			parts = append(parts, string(elem))
		}
	}
	return strings.Join(parts, "\n")
}
