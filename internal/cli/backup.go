package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/pathutil"
	itstrings "github.com/tauri-drive/engine/internal/util/strings"
)

// newBackupCmd creates the 'backup' command group.
func newBackupCmd() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted settings backup (export, import, preview)",
		Long: `Commands for password-protected backups of the local state:
credentials, sync folders, settings and recent upload history.

The backup file is sealed with a key derived from your password; it can
be imported on any machine without the original key file.`,
	}

	backupCmd.AddCommand(newBackupExportCmd())
	backupCmd.AddCommand(newBackupImportCmd())
	backupCmd.AddCommand(newBackupPreviewCmd())

	return backupCmd
}

// newBackupExportCmd creates the 'backup export' command.
func newBackupExportCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write an encrypted backup file",
		Long: fmt.Sprintf(`Export the saved credentials, sync folders, settings and recent upload
history to an encrypted file.

You will be asked for a password twice; it must be at least %d
characters. The same password is needed to import or preview the file.

Example:
  drive-engine backup export ~/drive-backup.bin`, constants.BackupMinPassword),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			if password == "" {
				password, err = readPasswordConfirmed("Backup password: ")
				if err != nil {
					return err
				}
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.ExportMigrationBackup(GetContext(), path, password); err != nil {
				return err
			}
			fmt.Printf("✓ Backup written to: %s\n", path)
			fmt.Println("  Keep the password safe; the file cannot be opened without it.")
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Backup password (prompted if omitted)")

	return cmd
}

// newBackupImportCmd creates the 'backup import' command.
func newBackupImportCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore state from an encrypted backup file",
		Long: `Import credentials, sync folders and settings from a backup file.

Existing credentials for the same bucket are replaced. Upload history in
the backup is reported but not restored; the recorded paths belong to
the machine that made the backup.

Example:
  drive-engine backup import ~/drive-backup.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			if password == "" {
				password, err = readPassword("Backup password: ")
				if err != nil {
					return err
				}
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			result, err := eng.App.ImportMigrationBackup(GetContext(), path, password)
			if err != nil {
				return err
			}

			fmt.Println("✓ Backup imported")
			if result.CredentialsImported {
				fmt.Println("  Credentials: restored")
			} else {
				fmt.Println("  Credentials: none in backup")
			}
			fmt.Printf("  Sync folders: %d\n", result.SyncFoldersImported)
			fmt.Printf("  Settings: %d\n", result.SettingsImported)
			if result.UploadHistoryImported > 0 {
				fmt.Printf("  Upload history: %d %s in backup (not restored)\n",
					result.UploadHistoryImported,
					itstrings.Pluralize("record", int64(result.UploadHistoryImported)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Backup password (prompted if omitted)")

	return cmd
}

// newBackupPreviewCmd creates the 'backup preview' command.
func newBackupPreviewCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show what a backup file contains without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			if password == "" {
				password, err = readPassword("Backup password: ")
				if err != nil {
					return err
				}
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			preview, err := eng.App.PreviewMigrationBackup(path, password)
			if err != nil {
				return err
			}

			fmt.Println("Backup contents")
			fmt.Println("===============")
			fmt.Printf("  Format version: %d\n", preview.Version)
			fmt.Printf("  Created by:     %s\n", preview.AppVersion)
			fmt.Printf("  Created at:     %s\n", preview.CreatedAt)
			if preview.HasCredentials && preview.BucketName != nil {
				fmt.Printf("  Credentials:    bucket %s\n", *preview.BucketName)
			} else {
				fmt.Println("  Credentials:    none")
			}
			fmt.Printf("  Sync folders:   %d\n", preview.SyncFoldersCount)
			fmt.Printf("  Settings:       %d\n", preview.SettingsCount)
			fmt.Printf("  Upload history: %d\n", preview.UploadHistoryCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Backup password (prompted if omitted)")

	return cmd
}
