package cli

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/events"
	"github.com/tauri-drive/engine/internal/localfs"
	"github.com/tauri-drive/engine/internal/progress"
	"github.com/tauri-drive/engine/internal/store"
	"github.com/tauri-drive/engine/internal/util/filter"
	itstrings "github.com/tauri-drive/engine/internal/util/strings"
)

// syncTask is one file scheduled for upload during a sync pass.
type syncTask struct {
	folderIdx int
	localPath string
	remoteKey string
	size      int64
}

// newSyncCmd creates the 'sync' command.
func newSyncCmd() *cobra.Command {
	var includePatterns string
	var excludePatterns string
	var pathPatterns string
	var includeHidden bool
	var dryRun bool
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload enabled sync folders to the bucket",
		Long: `Walk every enabled sync folder and upload its files to the folder's
remote path. Hidden files are skipped unless --include-hidden is set.

Sync is upload-only: nothing is deleted locally or remotely.

Examples:
  # Sync all enabled folders
  drive-engine sync

  # See what would be uploaded
  drive-engine sync --dry-run

  # Only documents, skipping temp files
  drive-engine sync --include "*.pdf,*.docx" --exclude "~$*"

  # Only files under any run_* directory
  drive-engine sync --path "run_*/**"

  # Upload one file at a time
  drive-engine sync --max-concurrent 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxConcurrent < constants.MinMaxConcurrent || maxConcurrent > constants.MaxMaxConcurrent {
				return fmt.Errorf("--max-concurrent must be between %d and %d, got %d",
					constants.MinMaxConcurrent, constants.MaxMaxConcurrent, maxConcurrent)
			}

			ctx := GetContext()
			eng, err := connectEngine(ctx)
			if err != nil {
				return err
			}
			defer eng.Close()

			folders, err := eng.App.SyncFolders(ctx)
			if err != nil {
				return err
			}
			enabled := make([]store.SyncFolder, 0, len(folders))
			for _, f := range folders {
				if f.Enabled {
					enabled = append(enabled, f)
				}
			}
			if len(enabled) == 0 {
				fmt.Println("No enabled sync folders.")
				fmt.Println("Add one with: drive-engine folders add <local-path> <remote-path>")
				return nil
			}

			filterCfg := filter.Config{
				Include:     filter.ParsePatternList(includePatterns),
				Exclude:     filter.ParsePatternList(excludePatterns),
				PathInclude: filter.ParsePatternList(pathPatterns),
			}

			// Collect the upload set folder by folder.
			var tasks []syncTask
			var totalBytes int64
			for i, f := range enabled {
				entries, err := localfs.CollectFiles(f.LocalPath, localfs.WalkOptions{IncludeHidden: includeHidden})
				if err != nil {
					GetLogger().Warn().Err(err).Str("path", f.LocalPath).Msg("failed to walk sync folder")
					continue
				}
				entries = filter.ApplyToEntries(entries, filterCfg)
				for _, entry := range entries {
					tasks = append(tasks, syncTask{
						folderIdx: i,
						localPath: entry.Path,
						remoteKey: remoteKeyForEntry(f.RemotePath, entry.RelPath),
						size:      entry.Size,
					})
					totalBytes += entry.Size
				}
			}

			if len(tasks) == 0 {
				fmt.Println("Nothing to upload.")
				return nil
			}

			if dryRun {
				fmt.Printf("Would upload %d %s (%s):\n\n",
					len(tasks), itstrings.Pluralize("file", int64(len(tasks))), itstrings.FormatBytes(totalBytes))
				for _, t := range tasks {
					fmt.Printf("  %s → %s (%s)\n", t.localPath, t.remoteKey, itstrings.FormatBytes(t.size))
				}
				return nil
			}

			start := time.Now()
			ui := progress.NewSyncUI(len(tasks))

			// Route progress events to the matching bar. Events carry the
			// absolute local path, which is also the bar key.
			ch := eng.Bus.Subscribe(events.EventUploadProgress)
			consumerDone := make(chan struct{})
			go func() {
				defer close(consumerDone)
				for ev := range ch {
					pe, ok := ev.(*events.UploadProgressEvent)
					if !ok {
						continue
					}
					if bar, ok := ui.Bar(pe.Progress.FilePath); ok {
						bar.UpdateProgress(pe.Progress.Progress / 100.0)
					}
				}
			}()

			bucket, _, err := eng.App.SavedBucket(ctx)
			if err != nil {
				return err
			}

			// Worker pool over the task list. Bars are registered in
			// dispatch order so the display matches the walk order.
			var wg sync.WaitGroup
			sem := make(chan struct{}, maxConcurrent)
			failedByFolder := make([]atomic.Int64, len(enabled))
			var failed atomic.Int64

			for _, t := range tasks {
				if ctx.Err() != nil {
					break
				}
				sem <- struct{}{}
				bar := ui.AddFileBar(t.localPath, bucket+"/"+t.remoteKey, t.size)
				wg.Add(1)
				go func(t syncTask, bar *progress.FileBar) {
					defer wg.Done()
					defer func() { <-sem }()

					_, err := eng.App.UploadFileWithProgress(ctx, t.localPath, t.remoteKey)
					bar.Complete(err)
					if err != nil {
						failedByFolder[t.folderIdx].Add(1)
						failed.Add(1)
					}
				}(t, bar)
			}
			wg.Wait()

			eng.Bus.Close()
			<-consumerDone
			ui.Wait()

			// Stamp last_sync on folders that synced clean.
			for i, f := range enabled {
				if failedByFolder[i].Load() > 0 {
					continue
				}
				if err := eng.App.TouchSyncFolder(ctx, f.ID); err != nil {
					GetLogger().Warn().Err(err).Int64("folder_id", f.ID).Msg("failed to stamp last_sync")
				}
			}

			elapsed := time.Since(start).Round(time.Second)
			notifier := eng.Notifier(ctx)
			nFailed := failed.Load()
			if nFailed > 0 {
				fmt.Printf("\n⚠️  %d of %d %s failed (%s)\n",
					nFailed, len(tasks), itstrings.Pluralize("upload", int64(len(tasks))), elapsed)
				notifier.SyncFailed(int(nFailed), len(tasks))
				return fmt.Errorf("%d %s failed", nFailed, itstrings.Pluralize("upload", nFailed))
			}

			fmt.Printf("\n✓ Synced %d %s from %d %s (%s) in %s\n",
				len(tasks), itstrings.Pluralize("file", int64(len(tasks))),
				len(enabled), itstrings.Pluralize("folder", int64(len(enabled))),
				itstrings.FormatBytes(totalBytes), elapsed)
			notifier.SyncComplete(len(tasks), totalBytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&includePatterns, "include", "", "Include only files matching these patterns (comma-separated glob patterns)")
	cmd.Flags().StringVar(&excludePatterns, "exclude", "", "Exclude files matching these patterns (comma-separated glob patterns)")
	cmd.Flags().StringVar(&pathPatterns, "path", "", "Include only files whose relative path matches these patterns (** matches nested directories)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Include hidden files and directories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List what would be uploaded without uploading")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", constants.DefaultMaxConcurrent,
		fmt.Sprintf("Maximum concurrent file uploads (%d-%d)", constants.MinMaxConcurrent, constants.MaxMaxConcurrent))

	return cmd
}

// remoteKeyForEntry joins a folder's remote path with a walked file's
// relative path. Both sides are slash-separated already.
func remoteKeyForEntry(remotePath, relPath string) string {
	prefix := strings.Trim(remotePath, "/")
	if prefix == "" {
		return relPath
	}
	return prefix + "/" + relPath
}
