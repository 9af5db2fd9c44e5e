package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/ccprune/internal/report"
)

var backupsFormat string

var backupsCmd = &cobra.Command{
	Use:   "backups [sessionId]",
	Short: "List the backups of a transcript, newest first",
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

		format := backupsFormat
		if format == "" {
			format = GetConfig().DefaultFormat
		}
		renderer, err := report.ForFormat(format)
		if err != nil {
			return err
		}

		entries, err := backupStore(layout).List(sessionID)
		if err != nil {
			return err
		}
		data, err := renderer.RenderBackups(&report.BackupList{
			SessionID: sessionID,
			Dir:       layout.BackupDir(),
			Entries:   entries,
		})
		return render(cmd, data, err)
	},
}

func init() {
	backupsCmd.Flags().StringVar(&backupsFormat, "format", "", "Output format: text or json (overrides config)")
	rootCmd.AddCommand(backupsCmd)
}
