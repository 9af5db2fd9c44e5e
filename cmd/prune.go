package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/ccprune/internal/prune"
	"github.com/fakeyudi/ccprune/internal/report"
	"github.com/fakeyudi/ccprune/internal/transcript"
)

var (
	pruneKeep   int
	pruneDryRun bool
	pruneYes    bool
	pruneFormat string
)

// pruneOptions are the parsed arguments of a prune run.
type pruneOptions struct {
	Layout    transcript.Layout
	SessionID string
	Keep      int
	DryRun    bool
	Yes       bool
	Renderer  report.Renderer
}

var pruneCmd = &cobra.Command{
	Use:   "prune [sessionId]",
	Short: "Drop all but the most recent assistant messages from a transcript",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := layoutFor(cmd)
		if err != nil {
			return err
		}
		sessionID, err := sessionArg(layout, args)
		if err != nil {
			return err
		}

		keep := GetConfig().Keep()
		if cmd.Flags().Changed("keep") {
			keep = pruneKeep
		}

		format := pruneFormat
		if format == "" {
			format = GetConfig().DefaultFormat
		}
		renderer, err := report.ForFormat(format)
		if err != nil {
			return err
		}

		return runPrune(cmd, pruneOptions{
			Layout:    layout,
			SessionID: sessionID,
			Keep:      keep,
			DryRun:    pruneDryRun,
			Yes:       pruneYes,
			Renderer:  renderer,
		})
	},
}

func runPrune(cmd *cobra.Command, opts pruneOptions) error {
	path := opts.Layout.Path(opts.SessionID)
	snap, err := transcript.Read(path)
	if err != nil {
		return err
	}

	if opts.Keep < 0 {
		opts.Keep = 0
	}
	res := prune.Prune(snap.Lines, opts.Keep)
	summary := &report.Summary{
		SessionID:         opts.SessionID,
		Transcript:        path,
		Keep:              opts.Keep,
		LinesBefore:       len(snap.Lines),
		LinesAfter:        len(res.Lines),
		Kept:              res.Kept,
		Dropped:           res.Dropped,
		AssistantMessages: res.AssistantMessages,
		DryRun:            opts.DryRun,
	}
	slog.Info("prune planned",
		"session_id", opts.SessionID,
		"keep", opts.Keep,
		"kept", res.Kept,
		"dropped", res.Dropped,
		"assistant_messages", res.AssistantMessages,
	)

	if opts.DryRun {
		data, err := opts.Renderer.Render(summary)
		return render(cmd, data, err)
	}

	if transcript.JoinLines(res.Lines) == transcript.JoinLines(snap.Lines) {
		cmd.Println("Nothing to prune.")
		return nil
	}

	if isInteractive() && !opts.Yes {
		prompt := fmt.Sprintf("Drop %d of %d messages from %s?", res.Dropped, res.Dropped+res.Kept, opts.SessionID)
		ok, err := askConfirm(cmd, path, prompt)
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	store := backupStore(opts.Layout)
	err = withSpinner(cmd, "Pruning "+opts.SessionID, func() error {
		original, err := snap.Verify()
		if err != nil {
			return err
		}
		e, err := store.Create(opts.SessionID, original, time.Now())
		if err != nil {
			return err
		}
		summary.Backup = store.Path(e)
		slog.Info("backup written", "path", summary.Backup)
		return transcript.Write(path, res.Lines)
	})
	if err != nil {
		return err
	}
	slog.Info("transcript pruned", "path", path, "lines_before", summary.LinesBefore, "lines_after", summary.LinesAfter)

	data, err := opts.Renderer.Render(summary)
	return render(cmd, data, err)
}

// render writes renderer output to the command's stdout.
func render(cmd *cobra.Command, data []byte, err error) error {
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func init() {
	pruneCmd.Flags().IntVarP(&pruneKeep, "keep", "k", 0, "Number of assistant messages to keep (default from config, 10)")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Show what would be dropped without writing anything")
	pruneCmd.Flags().BoolVarP(&pruneYes, "yes", "y", false, "Do not ask for confirmation")
	pruneCmd.Flags().StringVar(&pruneFormat, "format", "", "Output format: text or json (overrides config)")
	rootCmd.AddCommand(pruneCmd)
}
