package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for carelink.

The TUI shows the family's documents, updated live as they change, and an
upload form with per-file progress.

Controls:
  ↑/k, ↓/j  - Move selection
  ←/h, →/l  - Previous / next page
  /         - Search
  s, o, t   - Sort order, sort field, type filter
  u         - Upload
  ?         - Toggle help
  q         - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if newSession == nil {
		return notConfigured("session")
	}
	if uploadService == nil {
		return notConfigured("upload")
	}
	family, err := resolveFamily()
	if err != nil {
		return err
	}

	session := newSession()
	defer session.Close()

	// Notices raised while the TUI owns the terminal go to its status bar.
	notifier := tui.NewNotifier()
	if notifications != nil {
		prev := notifications.Use(notifier)
		defer notifications.Use(prev)
	}

	app, err := tui.NewApp(&tui.Ports{
		Session:       session,
		Uploader:      uploadService,
		Notifications: notifier,
		FamilyID:      family,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
