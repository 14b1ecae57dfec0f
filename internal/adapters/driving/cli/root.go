// Package cli provides the carelink command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	familyID  string
)

// NotifierTarget selects where service notifications are delivered.
type NotifierTarget interface {
	Use(target driven.Notifier) driven.Notifier
}

// Services bundles the driving ports the commands use.
type Services struct {
	Documents driving.DocumentService
	Uploader  driving.Uploader
	Settings  driving.SettingsService

	// NewSession creates an unbound live document session.
	NewSession func() driving.DocumentSession

	// WatchFolder reports files settling in dir. Optional.
	WatchFolder func(ctx context.Context, dir string, settle time.Duration) (<-chan string, error)

	// Notifications routes upload notices. Optional.
	Notifications NotifierTarget

	// Unavailable explains why the API-backed services are missing,
	// typically an unset api.base_url.
	Unavailable error

	// Close releases stores and timers.
	Close func()
}

// Bootstrap builds services once the global flags are parsed.
type Bootstrap func(configDir string) (*Services, error)

var (
	bootstrap Bootstrap

	documentService driving.DocumentService
	uploadService   driving.Uploader
	settingsService driving.SettingsService
	newSession      func() driving.DocumentSession
	watchFolder     func(ctx context.Context, dir string, settle time.Duration) (<-chan string, error)
	notifications   NotifierTarget
	unavailable     error
	closeServices   func()
)

var rootCmd = &cobra.Command{
	Use:   "carelink",
	Short: "Family documents for the CareLink marketplace",
	Long: `carelink lists, uploads and follows a family's care documents.

Documents are fetched from the marketplace API, kept current through the
live event stream and cached locally for offline listing.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initServices,
	PersistentPostRun: func(*cobra.Command, []string) {
		if closeServices != nil {
			closeServices()
			closeServices = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.carelink)")
	rootCmd.PersistentFlags().StringVarP(&familyID, "family", "f", "", "Family id (default family.default)")
}

// SetBootstrap registers the function that wires services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	if s == nil {
		documentService, uploadService, settingsService = nil, nil, nil
		newSession, watchFolder, notifications = nil, nil, nil
		unavailable, closeServices = nil, nil
		return
	}
	documentService = s.Documents
	uploadService = s.Uploader
	settingsService = s.Settings
	newSession = s.NewSession
	watchFolder = s.WatchFolder
	notifications = s.Notifications
	unavailable = s.Unavailable
	closeServices = s.Close
}

func initServices(*cobra.Command, []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}
	s, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// notConfigured reports a missing service, preferring the wiring error.
func notConfigured(name string) error {
	if unavailable != nil {
		return unavailable
	}
	return fmt.Errorf("%s service not configured", name)
}

// resolveFamily returns --family or the configured default.
func resolveFamily() (string, error) {
	if id := strings.TrimSpace(familyID); id != "" {
		return id, nil
	}
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err == nil && settings.DefaultFamilyID != "" {
			return settings.DefaultFamilyID, nil
		}
	}
	return "", errors.New("no family selected: pass --family or run 'carelink config set family.default <id>'")
}

// parseTypes converts flag values to document types.
func parseTypes(values []string) ([]domain.DocumentType, error) {
	types := make([]domain.DocumentType, 0, len(values))
	for _, v := range values {
		t, err := domain.ParseDocumentType(v)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
