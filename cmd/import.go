package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app"
	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/pkg/export"
)

var importMode string

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Parse pasted timetable text into a structured schedule",
	Long: "Reads timetable text from the given file or standard input and writes " +
		"the parsed schedule to the configured export target.",
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importMode, "mode", "m", app.ModeAuto, "import mode: grid, llm or auto")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	imp, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := imp.Close(); err != nil {
			logger.New("main").Errorf("importer close: %v", err)
		}
	}()

	sched, err := imp.Import(ctx, importMode, text)
	if err != nil {
		printDiagnosis(cmd.ErrOrStderr(), err)
		return err
	}
	return writeOutput(cmd, cfg, sched)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func writeOutput(cmd *cobra.Command, cfg *config.Config, sched *model.Schedule) error {
	var w io.Writer = cmd.OutOrStdout()
	if cfg.Export.Path != "" {
		f, err := os.Create(cfg.Export.Path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				logger.New("main").Errorf("output close: %v", cerr)
			}
		}()
		w = f
	}
	if cfg.Export.Format == "csv" {
		return export.WriteCSV(w, sched)
	}
	return export.WriteJSON(w, sched)
}

// printDiagnosis renders causes and recommendations for classified
// failures so the error is actionable without reading logs.
func printDiagnosis(w io.Writer, err error) {
	var diag *app.DiagnosedError
	if !errors.As(err, &diag) || diag.Diagnosis == nil {
		return
	}
	fmt.Fprintf(w, "import failed: %s (severity %s)\n", diag.Diagnosis.Category, diag.Diagnosis.Severity)
	for _, c := range diag.Diagnosis.Causes {
		fmt.Fprintf(w, "  cause: %s\n", c)
	}
	for _, r := range diag.Diagnosis.Recommendations {
		fmt.Fprintf(w, "  try: %s\n", r)
	}
}
