package app

import (
	"context"
	"fmt"

	"github.com/tauri-drive/engine/internal/store"
)

// Credentials is the connection input from the front-end.
type Credentials struct {
	AccountID       string `json:"account_id"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Endpoint        string `json:"endpoint"`
}

// ConnectionStatus reports the current client state. Bucket and Error are
// nil when not applicable.
type ConnectionStatus struct {
	Connected bool    `json:"connected"`
	Bucket    *string `json:"bucket"`
	Error     *string `json:"error"`
}

// Connect builds a client for the bucket, verifies it by listing objects,
// and installs it as the current client. With save set, the credentials are
// persisted first so the session survives a restart.
func (a *App) Connect(ctx context.Context, creds Credentials, bucket string, save bool) (string, error) {
	client, err := a.newClient(ctx, creds.AccountID, creds.AccessKeyID, creds.SecretAccessKey, bucket)
	if err != nil {
		return "", fmt.Errorf("failed to create R2 client: %w", err)
	}
	if err := client.VerifyConnection(ctx); err != nil {
		return "", err
	}

	if save {
		if _, err := a.store.SaveCredentials(ctx, bucket, creds.AccountID, creds.AccessKeyID, creds.SecretAccessKey, creds.Endpoint); err != nil {
			return "", err
		}
	}

	a.setClient(client)
	a.log.Info().Str("bucket", bucket).Bool("saved", save).Msg("connected")
	return "Connected successfully! Connection verified by listing objects.", nil
}

// LoadAndConnect restores the most recently saved credentials and connects
// with them.
func (a *App) LoadAndConnect(ctx context.Context) (string, error) {
	creds, err := a.store.LoadCredentials(ctx)
	if err != nil {
		return "", err
	}
	if creds == nil {
		return "", ErrNoSavedCredentials
	}

	client, err := a.newClient(ctx, creds.AccountID, creds.AccessKeyID, creds.SecretAccessKey, creds.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create R2 client: %w", err)
	}
	if err := client.VerifyConnection(ctx); err != nil {
		return "", err
	}

	a.setClient(client)
	a.log.Info().Str("bucket", creds.Name).Msg("auto-connected")
	return fmt.Sprintf("Auto-connected to bucket: %s", creds.Name), nil
}

// CurrentCredentials returns the saved credential bundle with key fields
// decrypted, or nil when nothing has been saved.
func (a *App) CurrentCredentials(ctx context.Context) (*store.Credentials, error) {
	return a.store.LoadCredentials(ctx)
}

// SavedBucket returns the name of the saved bucket. The bool is false when
// no credentials exist.
func (a *App) SavedBucket(ctx context.Context) (string, bool, error) {
	return a.store.CurrentBucket(ctx)
}

// CheckConnection probes the current client with a list call. It never
// returns an error; problems are reported inside the status.
func (a *App) CheckConnection(ctx context.Context) ConnectionStatus {
	client := a.currentClient()
	if client == nil {
		return ConnectionStatus{}
	}

	bucket := client.Bucket()
	if err := client.VerifyConnection(ctx); err != nil {
		msg := err.Error()
		return ConnectionStatus{Connected: false, Bucket: &bucket, Error: &msg}
	}
	return ConnectionStatus{Connected: true, Bucket: &bucket}
}

// Disconnect clears the client slot. In-flight transfers keep their client
// reference and run to completion.
func (a *App) Disconnect() {
	a.setClient(nil)
}
