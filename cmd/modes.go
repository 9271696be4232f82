package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app"
)

// grid and llm are mode-pinned shorthands for import.

var gridCmd = &cobra.Command{
	Use:   "grid [file]",
	Short: "Parse tabular timetable text deterministically",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		importMode = app.ModeGrid
		return runImport(cmd, args)
	},
}

var llmCmd = &cobra.Command{
	Use:   "llm [file]",
	Short: "Parse timetable text through the generation endpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		importMode = app.ModeLLM
		return runImport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(llmCmd)
}
