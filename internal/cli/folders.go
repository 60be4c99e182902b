package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/pathutil"
)

// newFoldersCmd creates the 'folders' command group.
func newFoldersCmd() *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage sync folder mappings (add, list, remove, toggle)",
		Long: `Commands for the local-to-remote folder mappings used by 'sync'.

Each mapping pairs a local directory with a remote path prefix in the
connected bucket. Mappings are scoped to the bucket whose credentials
are saved.`,
	}

	foldersCmd.AddCommand(newFoldersAddCmd())
	foldersCmd.AddCommand(newFoldersListCmd())
	foldersCmd.AddCommand(newFoldersRemoveCmd())
	foldersCmd.AddCommand(newFoldersToggleCmd())

	return foldersCmd
}

// newFoldersAddCmd creates the 'folders add' command.
func newFoldersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <local-path> <remote-path>",
		Short: "Add a sync folder mapping",
		Long: `Add a local directory to the sync set. Files under it are uploaded
below the remote path on the next 'sync'.

The local path is resolved (symlinks, ~) before it is stored, so the
same directory added twice maps to one entry.

Examples:
  # Sync the documents folder into docs/
  drive-engine folders add ~/Documents docs

  # Sync into the bucket root
  drive-engine folders add ~/Pictures ""`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			localPath, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}
			remotePath := strings.Trim(args[1], "/")

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			id, err := eng.App.AddSyncFolder(GetContext(), localPath, remotePath)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Added sync folder #%d: %s → %s\n", id, localPath, remotePath)
			return nil
		},
	}

	return cmd
}

// newFoldersListCmd creates the 'folders list' command.
func newFoldersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sync folder mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			folders, err := eng.App.SyncFolders(GetContext())
			if err != nil {
				return err
			}

			if len(folders) == 0 {
				fmt.Println("No sync folders configured")
				return nil
			}

			fmt.Printf("%-5s %-8s %-40s %-20s %s\n", "ID", "STATE", "LOCAL", "REMOTE", "LAST SYNC")
			fmt.Println(strings.Repeat("-", 100))
			for _, f := range folders {
				state := "enabled"
				if !f.Enabled {
					state = "disabled"
				}
				lastSync := "never"
				if f.LastSync != nil {
					lastSync = *f.LastSync
				}
				fmt.Printf("%-5d %-8s %-40s %-20s %s\n", f.ID, state, f.LocalPath, f.RemotePath, lastSync)
			}
			return nil
		},
	}

	return cmd
}

// newFoldersRemoveCmd creates the 'folders remove' command.
func newFoldersRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a sync folder mapping",
		Long: `Remove a mapping by id (see 'folders list'). No local or remote files
are touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid folder id %q", args[0])
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.RemoveSyncFolder(GetContext(), id); err != nil {
				return err
			}
			fmt.Printf("✓ Removed sync folder #%d\n", id)
			return nil
		},
	}

	return cmd
}

// newFoldersToggleCmd creates the 'folders toggle' command.
func newFoldersToggleCmd() *cobra.Command {
	var enable bool
	var disable bool

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Enable or disable a sync folder mapping",
		Long: `Enable or disable a mapping by id. Disabled mappings are kept but
skipped by 'sync'.

Examples:
  drive-engine folders toggle 3 --disable
  drive-engine folders toggle 3 --enable`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable == disable {
				return fmt.Errorf("specify exactly one of --enable or --disable")
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid folder id %q", args[0])
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.ToggleSyncFolder(GetContext(), id, enable); err != nil {
				return err
			}

			if enable {
				fmt.Printf("✓ Enabled sync folder #%d\n", id)
			} else {
				fmt.Printf("✓ Disabled sync folder #%d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&enable, "enable", false, "Enable the mapping")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable the mapping")

	return cmd
}
