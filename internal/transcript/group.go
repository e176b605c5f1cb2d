// internal/transcript/group.go
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// assistantGroup accumulates content blocks for one assistant message id
// until the next user record (or end of stream) flushes it.
type assistantGroup struct {
	blocks    []ContentBlock
	timestamp string
}

// GroupItems reassembles the filtered record stream into ordered items.
//
// Assistant records sharing a message id merge into a single item, keyed
// buffers preserving first-appearance order. Every user record acts as a
// synchronization boundary: all pending assistant buffers flush before it.
// User records whose content carries tool_result blocks yield standalone
// ToolResultItems after the (optional) text item.
func GroupItems(records []Record) []Item {
	var items []Item
	groups := make(map[string]*assistantGroup)
	var order []string

	flush := func() {
		for _, key := range order {
			grp := groups[key]
			items = append(items, AssistantItem{Blocks: grp.blocks, Timestamp: grp.timestamp})
		}
		clear(groups)
		order = order[:0]
	}

	for i, rec := range records {
		if rec.skip() {
			continue
		}
		msg, ok := rec.decodeMessage()
		if !ok {
			continue
		}

		switch rec.Type {
		case "user":
			flush()
			if msg.Role != "user" {
				continue
			}
			if text, isString := contentAsString(msg.Content); isString {
				if trimmed := strings.TrimSpace(text); trimmed != "" {
					items = append(items, UserItem{Text: trimmed, Timestamp: rec.Timestamp})
				}
				continue
			}
			blocks, isList := contentAsBlocks(msg.Content)
			if !isList {
				continue
			}
			var textParts []string
			var results []ToolResultPayload
			for _, block := range blocks {
				switch block.Type {
				case "text":
					if t := strings.TrimSpace(block.Text); t != "" {
						textParts = append(textParts, t)
					}
				case "tool_result":
					results = append(results, ToolResultPayload{
						ToolUseID: block.ToolUseID,
						Content:   block.Content,
						IsError:   block.IsError,
					})
				}
			}
			if len(textParts) > 0 {
				items = append(items, UserItem{Text: strings.Join(textParts, "\n"), Timestamp: rec.Timestamp})
			}
			for _, result := range results {
				items = append(items, ToolResultItem{Result: result, Timestamp: rec.Timestamp})
			}

		case "assistant":
			blocks, isList := contentAsBlocks(msg.Content)
			if !isList {
				continue
			}
			if msg.ID != "" {
				if grp, open := groups[msg.ID]; open {
					grp.blocks = append(grp.blocks, blocks...)
					continue
				}
			}
			key := msg.ID
			if key == "" {
				// identifier-less records never merge; key by position
				key = fmt.Sprintf("noid:%d", i)
			}
			groups[key] = &assistantGroup{blocks: blocks, timestamp: rec.Timestamp}
			order = append(order, key)
		}
	}

	flush()
	return items
}

// contentAsString reports whether the content field holds a plain string.
// Missing content counts as the empty string, matching the converter's
// treatment of absent fields.
func contentAsString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// contentAsBlocks decodes a content block list. Elements that are not JSON
// objects (or fail to decode) are ignored. Missing content decodes as an
// empty list.
func contentAsBlocks(raw json.RawMessage) ([]ContentBlock, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	blocks := make([]ContentBlock, 0, len(elems))
	for _, elem := range elems {
		var block ContentBlock
		if err := json.Unmarshal(elem, &block); err != nil {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, true
}
