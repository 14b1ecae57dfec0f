// Command carelink is the CareLink family documents client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/api/httpapi"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/config/file"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/dedup"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/events/sse"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/files"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/notify"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/storage/memory"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/storage/sqlite"
	"github.com/profyt7/carelinkai-sub003/internal/adapters/driving/cli"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driving"
	"github.com/profyt7/carelinkai-sub003/internal/core/services"
	"github.com/profyt7/carelinkai-sub003/internal/logger"
)

func main() {
	cli.SetBootstrap(wire)
	if err := cli.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// wire builds every adapter and service from the config directory.
// A missing api.base_url only disables the API-backed commands.
func wire(configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	out := &cli.Services{
		Settings:    settingsService,
		WatchFolder: watchFolder,
	}

	client, err := httpapi.NewClient(settings.API)
	if err != nil {
		logger.Debug("API unavailable: %v", err)
		out.Unavailable = err
		return out, nil
	}

	stream, err := sse.NewStream(settings.API.BaseURL, settings.Events.Path, client.HTTPClient())
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	cache, closeCache, err := openCache(configDir, settings.Cache.Enabled)
	if err != nil {
		return nil, err
	}

	notifications := notify.NewSwitch(notify.NewWriter(os.Stderr))
	uploader := services.NewUploadService(client, files.NewSource(), notifications, services.UploadOptions{
		ClearDelay: settings.Upload.ClearDelay,
		NewJobID:   uuid.NewString,
	})

	out.Documents = services.NewDocumentService(client, cache)
	out.Uploader = uploader
	out.Notifications = notifications
	out.NewSession = func() driving.DocumentSession {
		return services.NewDocumentSession(
			client,
			stream,
			dedup.NewWindow(settings.Events.DedupSize, settings.Events.DedupWindow),
			cache,
			services.SessionOptions{FetchTimeout: settings.API.Timeout},
		)
	}
	out.Close = func() {
		uploader.Close()
		closeCache()
	}
	return out, nil
}

// openCache opens the SQLite cache under configDir/data, or the default
// data directory, falling back to memory when disabled or unavailable.
func openCache(configDir string, enabled bool) (driven.DocumentCache, func(), error) {
	if !enabled {
		return memory.NewDocumentCache(), func() {}, nil
	}

	dataDir := ""
	if configDir != "" {
		dataDir = filepath.Join(configDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("Offline cache unavailable, using memory: %v", err)
		return memory.NewDocumentCache(), func() {}, nil
	}
	return store.DocumentCache(), func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing cache: %v", err)
		}
	}, nil
}

func watchFolder(ctx context.Context, dir string, settle time.Duration) (<-chan string, error) {
	folder, err := files.NewDropFolder(dir, settle)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: watch directory %s does not exist", domain.ErrInvalidInput, dir)
		}
		return nil, err
	}
	return folder.Watch(ctx)
}
