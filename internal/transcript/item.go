// internal/transcript/item.go
package transcript

import "encoding/json"

// Item is one logical unit of the conversation in original appearance
// order: a user turn, a merged assistant turn, or a standalone tool result.
type Item interface {
	item()
}

// UserItem is a plain user message.
type UserItem struct {
	Text      string
	Timestamp string
}

// AssistantItem is an assistant turn. Blocks from multiple raw records that
// share a message id are appended here in encounter order.
type AssistantItem struct {
	Blocks    []ContentBlock
	Timestamp string
}

// ToolResultItem carries the result payload for a prior tool invocation.
type ToolResultItem struct {
	Result    ToolResultPayload
	Timestamp string
}

func (UserItem) item()       {}
func (AssistantItem) item()  {}
func (ToolResultItem) item() {}

// ContentBlock is one block of assistant (or user) message content. The
// Type discriminant selects which fields are meaningful: "text" uses Text,
// "tool_use" uses ID/Name/Input, "thinking" is opaque and never rendered.
type ContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text"`
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`

	// tool_result fields, present when Type == "tool_result"
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// ToolResultPayload is the result of a single tool invocation, referenced
// by id from the tool-result index rather than owned by any item.
type ToolResultPayload struct {
	ToolUseID string
	Content   json.RawMessage
	IsError   bool
}
