// internal/transcript/record.go
package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Line types that carry no conversational content and are dropped outright.
var skipTypes = map[string]struct{}{
	"file-history-snapshot": {},
	"queue-operation":       {},
	"progress":              {},
	"system":                {},
}

// Record is one parsed transcript line. Fields a line doesn't carry stay
// at their zero value; a field of the wrong JSON type is treated as absent
// rather than failing the whole line.
type Record struct {
	Type      string
	Message   json.RawMessage
	Timestamp string
	IsMeta    bool
}

// message is the structured payload of a user or assistant record.
type message struct {
	ID      string          `json:"id"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ParseRecords splits raw transcript text into records, one JSON object per
// non-blank line. Lines that are not valid JSON objects are dropped.
func ParseRecords(data []byte) []Record {
	var records []Record
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rec, ok := parseRecord([]byte(line))
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func parseRecord(line []byte) (Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return Record{}, false
	}
	var rec Record
	if v, ok := fields["type"]; ok {
		json.Unmarshal(v, &rec.Type)
	}
	if v, ok := fields["timestamp"]; ok {
		json.Unmarshal(v, &rec.Timestamp)
	}
	if v, ok := fields["isMeta"]; ok {
		json.Unmarshal(v, &rec.IsMeta)
	}
	rec.Message = fields["message"]
	return rec, true
}

// skip reports whether this record is non-conversational (fixed skip set)
// or flagged as internal.
func (r Record) skip() bool {
	if _, ok := skipTypes[r.Type]; ok {
		return true
	}
	return r.IsMeta
}

// decodeMessage returns the structured message payload. A missing message
// decodes as an empty payload; a payload that is not a JSON object reports
// ok=false and the record contributes nothing.
func (r Record) decodeMessage() (message, bool) {
	if len(r.Message) == 0 || bytes.Equal(r.Message, []byte("null")) {
		return message{}, true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Message, &fields); err != nil {
		return message{}, false
	}
	var msg message
	if v, ok := fields["id"]; ok {
		json.Unmarshal(v, &msg.ID)
	}
	if v, ok := fields["role"]; ok {
		json.Unmarshal(v, &msg.Role)
	}
	msg.Content = fields["content"]
	return msg, true
}
