package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tauri-drive/engine/internal/backup"
	"github.com/tauri-drive/engine/internal/constants"
	"github.com/tauri-drive/engine/internal/version"
)

// exportedConfig is the plaintext settings-transfer format. Unlike
// migration backups it is not encrypted; it exists so users can move
// credentials between machines by hand when they accept the risk.
type exportedConfig struct {
	Version     string               `json:"version"`
	Credentials *exportedCredentials `json:"credentials"`
	SyncFolders []syncFolderConfig   `json:"sync_folders"`
}

type exportedCredentials struct {
	Bucket          string `json:"bucket"`
	AccountID       string `json:"account_id"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Endpoint        string `json:"endpoint"`
}

type syncFolderConfig struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	Enabled    bool   `json:"enabled"`
}

// ExportConfig writes the saved credentials and sync folders to path as
// plaintext JSON.
func (a *App) ExportConfig(ctx context.Context, path string) error {
	creds, err := a.store.LoadCredentials(ctx)
	if err != nil {
		return err
	}
	if creds == nil {
		return ErrNoCredentialsToExport
	}

	folders, err := a.store.SyncFolders(ctx)
	if err != nil {
		return err
	}

	cfg := exportedConfig{
		Version: "1.0",
		Credentials: &exportedCredentials{
			Bucket:          creds.Name,
			AccountID:       creds.AccountID,
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			Endpoint:        creds.Endpoint,
		},
		SyncFolders: make([]syncFolderConfig, 0, len(folders)),
	}
	for _, f := range folders {
		cfg.SyncFolders = append(cfg.SyncFolders, syncFolderConfig{
			LocalPath:  f.LocalPath,
			RemotePath: f.RemotePath,
			Enabled:    f.Enabled,
		})
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ImportConfig reads a config file written by ExportConfig and saves the
// credentials it carries. Files without a credentials object import
// nothing.
func (a *App) ImportConfig(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg exportedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}
	if cfg.Credentials == nil {
		return nil
	}

	c := cfg.Credentials
	if c.Bucket == "" || c.AccountID == "" || c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return fmt.Errorf("invalid config file: incomplete credentials")
	}

	if _, err := a.store.SaveCredentials(ctx, c.Bucket, c.AccountID, c.AccessKeyID, c.SecretAccessKey, c.Endpoint); err != nil {
		return err
	}
	return nil
}

// ImportResult reports what a migration import restored. Upload history is
// counted but never inserted; recorded paths rarely exist on the new
// machine.
type ImportResult struct {
	CredentialsImported   bool `json:"credentials_imported"`
	SyncFoldersImported   int  `json:"sync_folders_imported"`
	SettingsImported      int  `json:"settings_imported"`
	UploadHistoryImported int  `json:"upload_history_imported"`
}

// Preview summarizes a backup file without touching the store.
type Preview struct {
	Version            int     `json:"version"`
	AppVersion         string  `json:"app_version"`
	CreatedAt          string  `json:"created_at"`
	HasCredentials     bool    `json:"has_credentials"`
	BucketName         *string `json:"bucket_name"`
	SyncFoldersCount   int     `json:"sync_folders_count"`
	SettingsCount      int     `json:"settings_count"`
	UploadHistoryCount int     `json:"upload_history_count"`
}

// ExportMigrationBackup snapshots credentials, sync folders, settings and
// recent completed uploads, seals the snapshot under password, and writes
// it to path.
func (a *App) ExportMigrationBackup(ctx context.Context, path, password string) error {
	if len(password) < constants.BackupMinPassword {
		return ErrPasswordTooShort
	}

	snapshot := &backup.Snapshot{
		Version:    1,
		AppVersion: version.Version,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	creds, err := a.store.LoadCredentials(ctx)
	if err != nil {
		return err
	}
	if creds != nil {
		snapshot.Credentials = &backup.Credentials{
			BucketName:      creds.Name,
			AccountID:       creds.AccountID,
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			Endpoint:        creds.Endpoint,
		}
	}

	folders, err := a.store.SyncFolders(ctx)
	if err != nil {
		return err
	}
	snapshot.SyncFolders = make([]backup.SyncFolder, 0, len(folders))
	for _, f := range folders {
		snapshot.SyncFolders = append(snapshot.SyncFolders, backup.SyncFolder{
			LocalPath:  f.LocalPath,
			RemotePath: f.RemotePath,
			SyncMode:   "upload_only",
			Enabled:    f.Enabled,
		})
	}

	settings, err := a.store.Settings(ctx)
	if err != nil {
		return err
	}
	snapshot.Settings = make([]backup.Setting, 0, len(settings))
	for _, s := range settings {
		snapshot.Settings = append(snapshot.Settings, backup.Setting{Key: s.Key, Value: s.Value})
	}

	history, err := a.store.CompletedUploads(ctx, constants.BackupHistoryLimit)
	if err != nil {
		return err
	}
	snapshot.UploadHistory = make([]backup.UploadHistory, 0, len(history))
	for _, h := range history {
		snapshot.UploadHistory = append(snapshot.UploadHistory, backup.UploadHistory{
			FilePath:    h.FilePath,
			RemotePath:  h.RemotePath,
			TotalSize:   h.TotalSize,
			Status:      h.Status,
			CompletedAt: h.CompletedAt,
		})
	}

	sealed, err := backup.Encrypt(snapshot, password)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	a.log.Info().Str("path", path).Int("folders", len(snapshot.SyncFolders)).Int("history", len(snapshot.UploadHistory)).Msg("migration backup written")
	return nil
}

// ImportMigrationBackup opens a backup file and restores what it can:
// credentials are saved when present, folders and settings are applied one
// at a time with failures logged rather than aborting the import. There is
// deliberately no password length check here; old backups made under a
// weaker policy must stay importable.
func (a *App) ImportMigrationBackup(ctx context.Context, path, password string) (*ImportResult, error) {
	snapshot, err := a.readBackup(path, password)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}

	if snapshot.Credentials != nil {
		c := snapshot.Credentials
		if _, err := a.store.SaveCredentials(ctx, c.BucketName, c.AccountID, c.AccessKeyID, c.SecretAccessKey, c.Endpoint); err != nil {
			return nil, fmt.Errorf("failed to import credentials: %w", err)
		}
		result.CredentialsImported = true
	}

	for _, f := range snapshot.SyncFolders {
		if _, err := a.store.AddSyncFolder(ctx, f.LocalPath, f.RemotePath); err != nil {
			a.log.Warn().Err(err).Str("local_path", f.LocalPath).Msg("failed to import sync folder")
			continue
		}
		result.SyncFoldersImported++
	}

	for _, s := range snapshot.Settings {
		if err := a.store.SetSetting(ctx, s.Key, s.Value); err != nil {
			a.log.Warn().Err(err).Str("key", s.Key).Msg("failed to import setting")
			continue
		}
		result.SettingsImported++
	}

	result.UploadHistoryImported = len(snapshot.UploadHistory)
	return result, nil
}

// PreviewMigrationBackup opens a backup file and reports its contents
// without importing anything.
func (a *App) PreviewMigrationBackup(path, password string) (*Preview, error) {
	snapshot, err := a.readBackup(path, password)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		Version:            snapshot.Version,
		AppVersion:         snapshot.AppVersion,
		CreatedAt:          snapshot.CreatedAt,
		HasCredentials:     snapshot.Credentials != nil,
		SyncFoldersCount:   len(snapshot.SyncFolders),
		SettingsCount:      len(snapshot.Settings),
		UploadHistoryCount: len(snapshot.UploadHistory),
	}
	if snapshot.Credentials != nil {
		name := snapshot.Credentials.BucketName
		preview.BucketName = &name
	}
	return preview, nil
}

func (a *App) readBackup(path, password string) (*backup.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}
	return backup.Decrypt(data, password)
}
