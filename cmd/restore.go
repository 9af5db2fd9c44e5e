package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/ccprune/internal/backup"
	"github.com/fakeyudi/ccprune/internal/transcript"
)

var (
	restoreDryRun bool
	restoreYes    bool
)

// restoreOptions are the parsed arguments of a restore run.
type restoreOptions struct {
	Layout    transcript.Layout
	SessionID string
	DryRun    bool
	Yes       bool
}

var restoreCmd = &cobra.Command{
	Use:   "restore [sessionId]",
	Short: "Put back the most recent backup of a transcript",
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
		return runRestore(cmd, restoreOptions{
			Layout:    layout,
			SessionID: sessionID,
			DryRun:    restoreDryRun,
			Yes:       restoreYes,
		})
	},
}

func runRestore(cmd *cobra.Command, opts restoreOptions) error {
	store := backupStore(opts.Layout)
	e, err := store.Latest(opts.SessionID)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackup) {
			slog.Warn("restore without backup", "session_id", opts.SessionID, "dir", opts.Layout.BackupDir())
		}
		return err
	}

	src := store.Path(e)
	path := opts.Layout.Path(opts.SessionID)
	if opts.DryRun {
		cmd.Printf("Would restore %s from %s (%s)\n", path, src, e.Time().Local().Format("2006-01-02 15:04:05"))
		return nil
	}

	if isInteractive() && !opts.Yes {
		prompt := fmt.Sprintf("Replace %s with backup %s?", path, e.Name)
		ok, err := askConfirm(cmd, path, prompt)
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	err = withSpinner(cmd, "Restoring "+opts.SessionID, func() error {
		return store.Restore(e, path)
	})
	if err != nil {
		return err
	}
	slog.Info("transcript restored", "path", path, "backup", src)

	cmd.Printf("Restored %s from %s\n", path, src)
	return nil
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "Show which backup would be restored")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(restoreCmd)
}
