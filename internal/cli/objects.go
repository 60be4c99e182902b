package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/util/filter"
	itstrings "github.com/tauri-drive/engine/internal/util/strings"
)

// newLsCmd creates the 'ls' command.
func newLsCmd() *cobra.Command {
	var includePatterns string
	var excludePatterns string

	cmd := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List objects in the bucket",
		Long: `List objects in the connected bucket, optionally under a prefix.

Examples:
  # List everything
  drive-engine ls

  # List one folder
  drive-engine ls photos/2024/

  # Only archives, skipping temp files
  drive-engine ls --include "*.zip,*.tar.gz" --exclude "temp*"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}

			eng, err := connectEngine(GetContext())
			if err != nil {
				return err
			}
			defer eng.Close()

			objects, err := eng.App.ListObjects(GetContext(), prefix)
			if err != nil {
				return fmt.Errorf("failed to list objects: %w", err)
			}

			filterCfg := filter.Config{
				Include: filter.ParsePatternList(includePatterns),
				Exclude: filter.ParsePatternList(excludePatterns),
			}
			if !filterCfg.Empty() {
				kept := objects[:0]
				for _, obj := range objects {
					if filter.MatchesName(obj.Key, filterCfg) {
						kept = append(kept, obj)
					}
				}
				objects = kept
			}

			if len(objects) == 0 {
				fmt.Println("No objects found")
				return nil
			}

			fmt.Printf("Found %d object(s):\n\n", len(objects))
			fmt.Printf("%-60s %12s   %s\n", "KEY", "SIZE", "MODIFIED")
			fmt.Println(strings.Repeat("-", 95))
			for _, obj := range objects {
				size := itstrings.FormatBytes(obj.Size)
				if obj.IsDirectory {
					size = "DIR"
				}
				fmt.Printf("%-60s %12s   %s\n", obj.Key, size, obj.LastModified.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&includePatterns, "include", "", "Include only keys matching these patterns (comma-separated glob patterns)")
	cmd.Flags().StringVar(&excludePatterns, "exclude", "", "Exclude keys matching these patterns (comma-separated glob patterns)")

	return cmd
}

// newRmCmd creates the 'rm' command.
func newRmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Delete an object from the bucket",
		Long: `Delete one object from the connected bucket.

WARNING: This operation cannot be undone!

Examples:
  # Delete with confirmation prompt
  drive-engine rm old-report.pdf

  # Delete without prompting
  drive-engine rm old-report.pdf --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if !yes {
				ok, err := confirm(fmt.Sprintf("Delete '%s'? This cannot be undone", key))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			eng, err := connectEngine(GetContext())
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.DeleteFile(GetContext(), key); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted: %s\n", key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// newMvCmd creates the 'mv' command.
func newMvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <old-key> <new-key>",
		Short: "Rename an object (copy, then delete)",
		Long: `Rename an object in the connected bucket. The object is copied to the
new key and the old key is deleted.

Example:
  drive-engine mv drafts/report.pdf final/report.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := connectEngine(GetContext())
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.RenameFile(GetContext(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ Renamed: %s → %s\n", args[0], args[1])
			return nil
		},
	}

	return cmd
}

// newMkdirCmd creates the 'mkdir' command.
func newMkdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder marker in the bucket",
		Long: `Create a folder in the connected bucket by writing a zero-byte marker
object. A trailing slash is added if missing.

Example:
  drive-engine mkdir photos/2025`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := connectEngine(GetContext())
			if err != nil {
				return err
			}
			defer eng.Close()

			msg, err := eng.App.CreateFolder(GetContext(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s\n", msg)
			return nil
		},
	}

	return cmd
}
