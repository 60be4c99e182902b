package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/events"
	"github.com/tauri-drive/engine/internal/pathutil"
	"github.com/tauri-drive/engine/internal/progress"
	itstrings "github.com/tauri-drive/engine/internal/util/strings"
	"github.com/tauri-drive/engine/internal/validation"
)

// newReporter returns a live progress bar on a terminal and a silent
// reporter everywhere else, so piped output stays clean.
func newReporter() progress.Reporter {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return progress.NewCLIProgress()
	}
	return progress.NewNoOpProgress()
}

// remoteKeyFor derives the object key for an upload. An empty remote means
// the file's base name; a remote ending in / is a prefix the base name is
// appended to.
func remoteKeyFor(localPath, remote string) string {
	base := filepath.Base(localPath)
	if remote == "" {
		return base
	}
	if strings.HasSuffix(remote, "/") {
		return remote + base
	}
	return remote
}

// downloadTarget derives the local path for a download. An empty local
// means the key's base name in the working directory; an existing directory
// means the base name inside it. Key-derived names are validated so a
// hostile key cannot write outside the target.
func downloadTarget(remoteKey, local string) (string, error) {
	base := remoteKey
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}

	if local == "" {
		if err := validation.ValidateFilename(base); err != nil {
			return "", fmt.Errorf("refusing to derive local name from key: %w", err)
		}
		return base, nil
	}

	if info, err := os.Stat(local); err == nil && info.IsDir() {
		if err := validation.ValidateFilename(base); err != nil {
			return "", fmt.Errorf("refusing to derive local name from key: %w", err)
		}
		return filepath.Join(local, base), nil
	}
	return local, nil
}

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <local-file> [remote-key]",
		Short: "Upload a file to the bucket",
		Long: `Upload a local file to the connected bucket.

The upload is tracked in the local database; large files go through
multipart upload with concurrent parts. Press Ctrl+C to cancel; a
partially uploaded multipart session is aborted on the server.

Examples:
  # Upload under the file's own name
  drive-engine upload report.pdf

  # Upload under a different key
  drive-engine upload report.pdf documents/2025-report.pdf

  # Upload into a folder (trailing slash keeps the file name)
  drive-engine upload report.pdf documents/`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			localPath, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve path: %w", err)
			}

			info, err := os.Stat(localPath)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", args[0], err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory; use 'sync' for folders", args[0])
			}

			remote := ""
			if len(args) > 1 {
				remote = args[1]
			}
			remoteKey := remoteKeyFor(localPath, remote)

			ctx := GetContext()
			eng, err := connectEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			reporter := newReporter()
			reporter.Start(info.Size(), "Uploading "+filepath.Base(localPath))

			ch := eng.Bus.Subscribe(events.EventUploadProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for ev := range ch {
					pe, ok := ev.(*events.UploadProgressEvent)
					if !ok {
						continue
					}
					reporter.Update(pe.Progress.UploadedSize)
				}
			}()

			start := time.Now()
			uploadID, err := eng.App.UploadFileWithProgress(ctx, localPath, remoteKey)

			// Closing the bus ends the consumer before the summary prints.
			eng.Bus.Close()
			<-done

			if err != nil {
				reporter.Error(err)
				return err
			}
			reporter.Finish()

			fmt.Printf("✓ Uploaded: %s → %s (%s)\n", filepath.Base(localPath), remoteKey, itstrings.FormatBytes(info.Size()))
			fmt.Printf("  Upload ID: %s\n", uploadID)
			if time.Since(start) >= constants.NotifyMinTransferDuration {
				eng.Notifier(ctx).UploadComplete(filepath.Base(localPath), remoteKey)
			}
			return nil
		},
	}

	return cmd
}

// newDownloadCmd creates the 'download' command.
func newDownloadCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "download <remote-key> [local-path]",
		Short: "Download an object from the bucket",
		Long: `Download one object from the connected bucket.

Available disk space is checked before writing. Existing files are only
overwritten after confirmation (or with --force).

Examples:
  # Download into the working directory
  drive-engine download documents/report.pdf

  # Download to an explicit path
  drive-engine download documents/report.pdf ~/Desktop/report.pdf

  # Download into a directory
  drive-engine download documents/report.pdf ~/Desktop/`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteKey := args[0]
			local := ""
			if len(args) > 1 {
				resolved, err := pathutil.ResolveAbsolutePath(args[1])
				if err != nil {
					return fmt.Errorf("failed to resolve path: %w", err)
				}
				local = resolved
			}

			localPath, err := downloadTarget(remoteKey, local)
			if err != nil {
				return err
			}

			if _, err := os.Stat(localPath); err == nil && !force {
				ok, err := confirm(fmt.Sprintf("File '%s' exists, overwrite", localPath))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted.")
					return nil
				}
			}

			ctx := GetContext()
			eng, err := connectEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			reporter := newReporter()

			ch := eng.Bus.Subscribe(events.EventDownloadProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				// Size is unknown until the first chunk event arrives.
				started := false
				for ev := range ch {
					de, ok := ev.(*events.DownloadProgressEvent)
					if !ok {
						continue
					}
					p := de.Progress
					if !started && p.TotalSize > 0 {
						reporter.Start(p.TotalSize, "Downloading "+p.FileName)
						started = true
					}
					if started && p.DownloadedSize > 0 {
						reporter.Update(p.DownloadedSize)
					}
				}
			}()

			start := time.Now()
			_, err = eng.App.DownloadFileWithProgress(ctx, remoteKey, localPath)

			eng.Bus.Close()
			<-done

			if err != nil {
				reporter.Error(err)
				return err
			}
			reporter.Finish()

			info, statErr := os.Stat(localPath)
			if statErr == nil {
				fmt.Printf("✓ Downloaded: %s → %s (%s)\n", remoteKey, localPath, itstrings.FormatBytes(info.Size()))
			} else {
				fmt.Printf("✓ Downloaded: %s → %s\n", remoteKey, localPath)
			}
			if time.Since(start) >= constants.NotifyMinTransferDuration {
				eng.Notifier(ctx).DownloadComplete(filepath.Base(localPath), localPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files without prompting")

	return cmd
}

// newTransfersCmd creates the 'transfers' command group.
func newTransfersCmd() *cobra.Command {
	transfersCmd := &cobra.Command{
		Use:   "transfers",
		Short: "Inspect and retry tracked uploads",
		Long: `Commands for the upload tracking table.

Uploads interrupted by a crash or cancelled mid-flight stay in the table;
'transfers list' shows them and 'transfers retry' starts them over.`,
	}

	transfersCmd.AddCommand(newTransfersListCmd())
	transfersCmd.AddCommand(newTransfersRetryCmd())

	return transfersCmd
}

// newTransfersListCmd creates the 'transfers list' command.
func newTransfersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploads that are pending, in flight or paused",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			uploads, err := eng.App.ActiveUploads(GetContext())
			if err != nil {
				return err
			}

			if len(uploads) == 0 {
				fmt.Println("No active uploads")
				return nil
			}

			fmt.Printf("%-36s %-30s %-10s %8s %12s\n", "ID", "FILE", "STATUS", "DONE", "SIZE")
			fmt.Println(strings.Repeat("-", 100))
			for _, u := range uploads {
				fmt.Printf("%-36s %-30s %-10s %7.1f%% %12s\n",
					u.ID, truncateName(u.FileName, 30), u.Status, u.Progress, itstrings.FormatBytes(u.TotalSize))
			}
			return nil
		},
	}

	return cmd
}

// newTransfersRetryCmd creates the 'transfers retry' command.
func newTransfersRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry <upload-id>",
		Short: "Restart an interrupted upload from the beginning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			eng, err := connectEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			reporter := newReporter()

			ch := eng.Bus.Subscribe(events.EventUploadProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				started := false
				for ev := range ch {
					pe, ok := ev.(*events.UploadProgressEvent)
					if !ok {
						continue
					}
					p := pe.Progress
					if !started && p.TotalSize > 0 {
						reporter.Start(p.TotalSize, "Uploading "+p.FileName)
						started = true
					}
					if started {
						reporter.Update(p.UploadedSize)
					}
				}
			}()

			newID, err := eng.App.RetryUpload(ctx, args[0])

			eng.Bus.Close()
			<-done

			if err != nil {
				reporter.Error(err)
				return err
			}
			reporter.Finish()

			fmt.Printf("✓ Upload completed (new ID: %s)\n", newID)
			return nil
		},
	}

	return cmd
}

// truncateName shortens a name to max runes, marking the cut with an ellipsis.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
