// Package transcript converts Claude Code JSONL transcripts into readable
// markdown conversation logs that mirror the chat UI.
//
// The conversion is a pure batch transform: the transcript is loaded fully,
// reassembled into ordered conversation items, and rendered in a single
// forward walk. Byte-identical input and options produce byte-identical
// output.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
)

// Options are the invocation parameters for one conversion.
type Options struct {
	TranscriptPath string
	OutputPath     string
	SessionID      string
	Date           string
	StartTime      string
	AgentType      string
	AgentID        string
}

// Convert reads the transcript at opts.TranscriptPath and writes the
// rendered markdown document to opts.OutputPath, creating parent
// directories as needed.
//
// A transcript with zero parseable records produces an empty output file,
// created only when the output doesn't already exist, so repeated
// invocations stay idempotent. A missing transcript file is an error.
func Convert(opts Options) error {
	data, err := os.ReadFile(opts.TranscriptPath)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	records := ParseRecords(data)
	if len(records) == 0 {
		if _, err := os.Stat(opts.OutputPath); err == nil {
			return nil
		}
		return writeOutput(opts.OutputPath, "")
	}

	items := GroupItems(records)
	doc := RenderHeader(opts) + RenderBody(items)
	return writeOutput(opts.OutputPath, doc)
}

func writeOutput(path, doc string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(abs, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
