package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/cclog/internal/hook"
)

var hookSubagent bool

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.Flags().BoolVar(&hookSubagent, "subagent", false, "handle a SubagentStop event instead of Stop")
}

// The hook must never fail the client that invoked it: all errors are
// swallowed and the command exits 0.
var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run as a Stop/SubagentStop hook, logging the finished session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		setupLogging(cfg)

		loc := time.Local
		if cfg.Timezone != "" {
			if l, err := time.LoadLocation(cfg.Timezone); err == nil {
				loc = l
			} else {
				slog.Debug("invalid timezone, using system zone", "timezone", cfg.Timezone)
			}
		}

		hook.New(cfg.LogDir, loc).Run(os.Stdin, hookSubagent)
	},
}
