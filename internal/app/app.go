// Package app is the command surface of the engine: every operation a
// front-end can invoke lives here as a method on App. The package is
// framework-agnostic; progress reaches the front-end through the event bus
// and results come back as plain values, with errors carried as strings
// across the boundary.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/tauri-drive/engine/internal/events"
	"github.com/tauri-drive/engine/internal/logging"
	"github.com/tauri-drive/engine/internal/r2"
	"github.com/tauri-drive/engine/internal/store"
	"github.com/tauri-drive/engine/internal/upload"
)

// Boundary errors. The messages are part of the front-end contract: shells
// match on these exact strings, so they must not change.
var (
	// ErrNotConnected is returned by commands that need a live client.
	ErrNotConnected = errors.New("Not connected to R2")

	// ErrNoSavedCredentials is returned by LoadAndConnect when nothing has
	// been saved yet.
	ErrNoSavedCredentials = errors.New("No saved credentials found")

	// ErrUploadNotFound is returned when an upload id resolves to no row.
	ErrUploadNotFound = errors.New("Upload not found")

	// ErrNoCredentialsToExport is returned by ExportConfig on an empty store.
	ErrNoCredentialsToExport = errors.New("No credentials to export")

	// ErrPasswordTooShort is returned by ExportMigrationBackup.
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters")
)

// App holds the shared process state: the persistence store, the upload
// state manager, the optional connected client, and the registry of live
// multipart drivers keyed by upload id. One App is created at startup and
// torn down with the process.
type App struct {
	store   *store.Store
	uploads *upload.Manager
	bus     *events.EventBus
	log     *logging.Logger

	clientMu sync.RWMutex
	client   *r2.Client

	driversMu sync.Mutex
	drivers   map[string]*r2.MultipartUpload

	// newClient builds the object-store client. Tests swap in a
	// constructor backed by a fake.
	newClient func(ctx context.Context, accountID, accessKeyID, secretAccessKey, bucket string) (*r2.Client, error)
}

// New wires the command surface over an open store. The event bus and
// logger are shared with the front-end that owns them.
func New(st *store.Store, bus *events.EventBus, logger *logging.Logger) *App {
	return &App{
		store:     st,
		uploads:   upload.NewManager(st.DB()),
		bus:       bus,
		log:       logger,
		drivers:   make(map[string]*r2.MultipartUpload),
		newClient: r2.NewClient,
	}
}

// Close releases the store. The event bus is owned by the caller.
func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) currentClient() *r2.Client {
	a.clientMu.RLock()
	defer a.clientMu.RUnlock()
	return a.client
}

func (a *App) setClient(c *r2.Client) {
	a.clientMu.Lock()
	a.client = c
	a.clientMu.Unlock()
}

// connectedClient returns the live client or ErrNotConnected. Callers hold
// only the returned reference; the slot may be swapped underneath them and
// their in-flight operations finish on the old client.
func (a *App) connectedClient() (*r2.Client, error) {
	if c := a.currentClient(); c != nil {
		return c, nil
	}
	return nil, ErrNotConnected
}

func (a *App) registerDriver(id string, m *r2.MultipartUpload) {
	a.driversMu.Lock()
	a.drivers[id] = m
	a.driversMu.Unlock()
}

func (a *App) unregisterDriver(id string) {
	a.driversMu.Lock()
	delete(a.drivers, id)
	a.driversMu.Unlock()
}

func (a *App) driver(id string) (*r2.MultipartUpload, bool) {
	a.driversMu.Lock()
	defer a.driversMu.Unlock()
	m, ok := a.drivers[id]
	return m, ok
}
