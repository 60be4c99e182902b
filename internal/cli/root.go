// Package cli provides the command-line interface for drive-engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/app"
	"github.com/tauri-drive/engine/internal/config"
	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/crypto"
	"github.com/tauri-drive/engine/internal/events"
	"github.com/tauri-drive/engine/internal/logging"
	"github.com/tauri-drive/engine/internal/notify"
	"github.com/tauri-drive/engine/internal/store"
)

var (
	// Global flags
	verbose bool
	debug   bool
	dataDir string

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information - set by main package at startup
var (
	Version   = "v0.1.0-dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "drive-engine",
		Short: "Tauri Drive engine - sync local folders to Cloudflare R2",
		Long: `Tauri Drive engine ` + Version + ` - Built: ` + BuildTime + `
Backend engine for Tauri Drive: connects to an R2 bucket, keeps local
folders synced into it, and tracks every upload in a local database.

Typical first run:
  drive-engine connect --account-id ID --access-key KEY --bucket my-bucket --save
  drive-engine folders add ~/Documents docs/
  drive-engine sync

Credentials are encrypted at rest with a machine-local key; use
'backup export' to move them to another machine.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(-1) // Debug level (zerolog.DebugLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override the application data directory")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Loop to handle multiple signals (e.g., user pressing Ctrl+C multiple times)
	go func() {
		for sig := range sigChan {
			// Only print cancellation message if we received an actual signal
			// (when channel is closed, sig will be nil and the loop exits)
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\n\n🛑 Received signal %v, cancelling operations...\n", sig)
				fmt.Fprintf(os.Stderr, "   In-flight multipart uploads will be aborted.\n\n")
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newMvCmd())
	rootCmd.AddCommand(newMkdirCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newTransfersCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSettingsCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}

// engine bundles the per-invocation runtime: the open store, the event bus
// and the command surface built over them. Commands open one engine, use
// it, and close it before returning.
type engine struct {
	App *app.App
	Bus *events.EventBus
}

// openEngine prepares the data directory, loads the machine-local key and
// opens the database. No connection to R2 is made.
func openEngine() (*engine, error) {
	dir, err := config.EnsureDataDirectory(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	codec, err := crypto.NewCodec(config.KeyFilePath(dir))
	if err != nil {
		return nil, err
	}

	st, err := store.Open(config.DatabasePath(dir), codec)
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	return &engine{
		App: app.New(st, bus, GetLogger()),
		Bus: bus,
	}, nil
}

// connectEngine opens the engine and restores the saved connection. Most
// commands that talk to the bucket go through here.
func connectEngine(ctx context.Context) (*engine, error) {
	eng, err := openEngine()
	if err != nil {
		return nil, err
	}
	if _, err := eng.App.LoadAndConnect(ctx); err != nil {
		eng.Close()
		if errors.Is(err, app.ErrNoSavedCredentials) {
			return nil, fmt.Errorf("no saved credentials; run 'drive-engine connect --save' first")
		}
		return nil, err
	}
	return eng, nil
}

// Close tears the engine down. Closing the bus first ends any event
// consumer goroutines before the store goes away.
func (e *engine) Close() {
	e.Bus.Close()
	if err := e.App.Close(); err != nil {
		GetLogger().Warn().Err(err).Msg("failed to close store")
	}
}

// Notifier builds a desktop notifier honoring the user's "notifications"
// setting. Absent means enabled.
func (e *engine) Notifier(ctx context.Context) *notify.Notifier {
	enabled := true
	if v, ok, err := e.App.GetSetting(ctx, constants.SettingNotifications); err == nil && ok {
		enabled = v == "true"
	}
	return notify.NewNotifier(enabled, GetLogger())
}
