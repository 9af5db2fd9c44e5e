package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/ccprune/internal/backup"
	"github.com/fakeyudi/ccprune/internal/config"
	"github.com/fakeyudi/ccprune/internal/log"
	"github.com/fakeyudi/ccprune/internal/transcript"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// isInteractive reports whether prompts and spinners may be shown. Tests
// replace it.
var isInteractive = func() bool {
	return term.IsTerminal(os.Stdin.Fd())
}

// askConfirm asks before a destructive write. Tests replace it.
var askConfirm = confirm

var rootCmd = &cobra.Command{
	Use:   "ccprune",
	Short: "Shrink chat session transcripts by dropping old messages",
	Long: heredoc.Doc(`
		ccprune trims a chat session transcript (one JSON record per line) down to
		its most recent assistant turns. The session header and every non-message
		record are kept. The original file is backed up first and can be put back
		with "ccprune restore".
	`),
	Example: heredoc.Doc(`
		# Keep the last 10 assistant messages of the newest session in this project
		ccprune prune

		# Keep the last 3 assistant messages of a given session, without asking
		ccprune prune 0f8c1a9e-3b1e-4c55-a7d2-7f3f0e6c2b11 -k 3 -y

		# Show what would be dropped
		ccprune prune -k 3 --dry-run

		# Undo the last prune
		ccprune restore 0f8c1a9e-3b1e-4c55-a7d2-7f3f0e6c2b11
	`),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := resolveWorkDir(cmd)
		if err != nil {
			return err
		}

		// Load and merge config files.
		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject(workDir)
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = config.Merge(global, project)

		if dir, _ := cmd.Flags().GetString("claude-dir"); dir != "" {
			cfg.ClaudeDir = dir
		}

		debug, _ := cmd.Flags().GetBool("debug")
		if err := log.Setup(cfg.LogFile, debug); err != nil {
			return fmt.Errorf("setting up log file: %w", err)
		}
		slog.Debug("config loaded", "claude_dir", cfg.ClaudeDir, "work_dir", workDir, "keep", cfg.Keep())
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return log.Close()
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		log.Close()
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// resolveWorkDir returns the --cwd flag value or the process working directory.
func resolveWorkDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString("cwd"); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// layoutFor builds the transcript layout for the current command.
func layoutFor(cmd *cobra.Command) (transcript.Layout, error) {
	workDir, err := resolveWorkDir(cmd)
	if err != nil {
		return transcript.Layout{}, err
	}
	c := GetConfig()
	return transcript.Layout{
		ClaudeDir:     c.ClaudeDir,
		WorkDir:       workDir,
		BackupDirName: c.BackupDirName,
	}, nil
}

// sessionArg returns the session id from args, or the most recently modified
// session of the project when none was given.
func sessionArg(layout transcript.Layout, args []string) (string, error) {
	if len(args) == 0 {
		id, err := layout.LatestSession()
		if err != nil {
			return "", err
		}
		slog.Info("using most recent session", "session_id", id)
		return id, nil
	}
	if err := transcript.ValidateID(args[0]); err != nil {
		return "", err
	}
	return args[0], nil
}

// backupStore returns the backup store of the layout's project.
func backupStore(layout transcript.Layout) backup.Store {
	return backup.NewStore(layout.BackupDir())
}

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Project working directory (default: current directory)")
	rootCmd.PersistentFlags().String("claude-dir", "", "Chat client data directory (default: $CLAUDE_CONFIG_DIR or ~/.claude)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Write debug records to the log file")
}
