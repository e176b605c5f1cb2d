package main

import (
	"github.com/spf13/cobra"

	"github.com/user/cclog/internal/transcript"
)

var convertOpts transcript.Options

func init() {
	rootCmd.AddCommand(convertCmd)
	f := convertCmd.Flags()
	f.StringVar(&convertOpts.TranscriptPath, "transcript", "", "path to the JSONL transcript file")
	f.StringVar(&convertOpts.OutputPath, "output", "", "path to the output markdown file")
	f.StringVar(&convertOpts.SessionID, "session-id", "", "session ID for the log header")
	f.StringVar(&convertOpts.Date, "date", "", "date string for the log header (e.g. 2026-02-16)")
	f.StringVar(&convertOpts.StartTime, "start-time", "", "start timestamp (ISO 8601) for the log header")
	f.StringVar(&convertOpts.AgentType, "agent-type", "", "subagent type (e.g. Explore, Plan) for subagent logs")
	f.StringVar(&convertOpts.AgentID, "agent-id", "", "subagent ID for subagent logs")
	convertCmd.MarkFlagRequired("transcript")
	convertCmd.MarkFlagRequired("output")
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a JSONL transcript to a markdown conversation log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transcript.Convert(convertOpts)
	},
}
