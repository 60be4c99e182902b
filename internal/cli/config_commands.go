package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/config"
	"github.com/tauri-drive/engine/internal/pathutil"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Plaintext settings transfer and data paths",
		Long: `Configuration transfer commands.

Commands:
  export - Write credentials and sync folders as plaintext JSON
  import - Read a file written by export
  path   - Show where local data is stored

For an encrypted, password-protected transfer use 'backup' instead.`,
	}

	configCmd.AddCommand(newConfigExportCmd())
	configCmd.AddCommand(newConfigImportCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigExportCmd creates the 'config export' command.
func newConfigExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export credentials and sync folders as plaintext JSON",
		Long: `Write the saved credentials and sync folder mappings to a JSON file.

WARNING: The file contains the secret access key in plaintext. Prefer
'backup export' unless you specifically need an unencrypted file.

Example:
  drive-engine config export ./drive-config.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.ExportConfig(GetContext(), path); err != nil {
				return err
			}

			fmt.Printf("✓ Configuration exported to: %s\n", path)
			fmt.Println("⚠️  The file contains your secret access key in plaintext.")
			return nil
		},
	}

	return cmd
}

// newConfigImportCmd creates the 'config import' command.
func newConfigImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a plaintext configuration file",
		Long: `Read a file written by 'config export' and save the credentials it
carries. The imported credentials become the current connection for
later commands.

Example:
  drive-engine config import ./drive-config.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.ImportConfig(GetContext(), path); err != nil {
				return err
			}
			fmt.Println("✓ Configuration imported")
			fmt.Println("Verify it with: drive-engine status")
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show where local data is stored",
		Long:  `Display the data directory, database and key file locations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir
			if dir == "" {
				dir = config.DataDirectory()
				fmt.Println("Data directory (default):")
			} else {
				fmt.Println("Data directory (from --data-dir flag):")
			}

			fmt.Printf("  %s\n", dir)
			fmt.Println()
			fmt.Printf("Database: %s\n", config.DatabasePath(dir))
			fmt.Printf("Key file: %s\n", config.KeyFilePath(dir))
			fmt.Println()

			if _, err := os.Stat(config.DatabasePath(dir)); err == nil {
				fmt.Println("Status: ✓ Database exists")
			} else {
				fmt.Println("Status: Database does not exist yet")
				fmt.Println()
				fmt.Println("It is created on first use, e.g. by: drive-engine connect --save")
			}

			return nil
		},
	}

	return cmd
}
