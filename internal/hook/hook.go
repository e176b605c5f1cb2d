// Package hook runs the session-logger hook: it reads hook input from
// stdin, waits for the transcript to finish flushing, and invokes the
// converter to produce a markdown log.
//
// Hook failures are deliberately invisible to the caller. Whatever goes
// wrong, the hook reports success upward; converter errors land in an
// error log inside the log directory instead.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/user/cclog/internal/transcript"
)

const (
	stableSizePolls = 10
	errorLogName    = ".converter-errors.log"
)

var isoTimestampRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(\d{2}):(\d{2}):(\d{2})`)

// Input is the JSON payload delivered on stdin for Stop and SubagentStop
// events.
type Input struct {
	SessionID           string `json:"session_id"`
	TranscriptPath      string `json:"transcript_path"`
	AgentTranscriptPath string `json:"agent_transcript_path"`
	AgentID             string `json:"agent_id"`
	AgentType           string `json:"agent_type"`
}

// Runner converts a finished session transcript into a named log file.
type Runner struct {
	LogDir    string
	Location  *time.Location
	PollDelay time.Duration
	Now       func() time.Time
}

// New returns a Runner writing logs under logDir, localizing timestamps to
// loc (nil means time.Local).
func New(logDir string, loc *time.Location) *Runner {
	if loc == nil {
		loc = time.Local
	}
	return &Runner{
		LogDir:    logDir,
		Location:  loc,
		PollDelay: 200 * time.Millisecond,
		Now:       time.Now,
	}
}

// Run processes one hook invocation. subagent selects the SubagentStop
// field set and filename form. Run never fails the hook: malformed input
// and missing transcripts are silent no-ops, and converter errors are
// appended to the error log.
func (r *Runner) Run(stdin io.Reader, subagent bool) {
	var in Input
	if err := json.NewDecoder(stdin).Decode(&in); err != nil {
		return
	}

	transcriptPath := in.TranscriptPath
	if subagent {
		transcriptPath = in.AgentTranscriptPath
	}
	if transcriptPath == "" {
		return
	}
	if info, err := os.Stat(transcriptPath); err != nil || info.IsDir() {
		return
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}

	r.waitForStableSize(transcriptPath)

	dateStr, timePart, localTS := r.localizeStart(firstTimestamp(transcriptPath))

	if err := os.MkdirAll(r.LogDir, 0o755); err != nil {
		return
	}

	name := fmt.Sprintf("%s-%s-%s", dateStr, timePart, shortID(sessionID))
	opts := transcript.Options{
		TranscriptPath: transcriptPath,
		SessionID:      sessionID,
		Date:           dateStr,
		StartTime:      localTS,
	}
	if subagent {
		agentID := in.AgentID
		if agentID == "" {
			agentID = "unknown"
		}
		agentType := in.AgentType
		if agentType == "" {
			agentType = "subagent"
		}
		name += fmt.Sprintf("-subagent-%s-%s", agentType, shortID(agentID))
		opts.AgentType = agentType
		opts.AgentID = agentID
	}
	opts.OutputPath = filepath.Join(r.LogDir, name+".md")

	if err := transcript.Convert(opts); err != nil {
		slog.Debug("converter failed", "transcript", transcriptPath, "error", err)
		r.appendError(err)
	}
	r.pruneErrorLog()
}

// waitForStableSize polls until two consecutive size reads agree, bounded
// by stableSizePolls rounds.
func (r *Runner) waitForStableSize(path string) {
	prev := int64(-1)
	for i := 0; i < stableSizePolls; i++ {
		var size int64
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		if size == prev {
			return
		}
		prev = size
		time.Sleep(r.PollDelay)
	}
}

// firstTimestamp scans the transcript for the first record carrying a
// timestamp field.
func firstTimestamp(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) {
			continue
		}
		if ts := gjson.Get(line, "timestamp").String(); ts != "" {
			return ts
		}
	}
	return ""
}

// localizeStart converts a UTC ISO-8601 start timestamp into the log's
// local date string, HHMM filename component, and localized ISO timestamp.
// Unusable timestamps fall back to the current date with time 0000.
func (r *Runner) localizeStart(startTS string) (dateStr, timePart, localTS string) {
	if startTS != "" && isoTimestampRe.MatchString(startTS) {
		if t, err := parseISO(startTS); err == nil {
			local := t.In(r.Location)
			return local.Format("2006-01-02"), local.Format("1504"), local.Format(time.RFC3339)
		}
	}
	return r.Now().In(r.Location).Format("2006-01-02"), "0000", startTS
}

func parseISO(ts string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t, nil
	}
	// offset-less timestamps are taken as UTC
	return time.ParseInLocation("2006-01-02T15:04:05", ts, time.UTC)
}

func (r *Runner) appendError(convErr error) {
	path := filepath.Join(r.LogDir, errorLogName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, convErr.Error())
}

// pruneErrorLog removes an empty error log; its presence is the signal.
func (r *Runner) pruneErrorLog() {
	path := filepath.Join(r.LogDir, errorLogName)
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		os.Remove(path)
	}
}

func shortID(id string) string {
	runes := []rune(id)
	if len(runes) <= 8 {
		return id
	}
	return string(runes[:8])
}
