package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads the configuration file when it changes. The parent
// directory is watched so that editors replacing the file by rename are
// noticed too.
type Watcher struct {
	configPath string
	onChange   func(*Config) error
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	started    bool
	stopped    bool
	done       chan struct{}
}

// NewWatcher creates a new configuration file watcher
func NewWatcher(configPath string, onChange func(*Config) error) (*Watcher, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		configPath: abs,
		onChange:   onChange,
		watcher:    watcher,
		done:       make(chan struct{}),
	}, nil
}

// Start begins watching the configuration file
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.mu.Lock()
	w.started = true
	w.mu.Unlock()
	go w.watch()

	log.Info().Str("path", w.configPath).Msg("config watcher started")
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	err := w.watcher.Close()
	w.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	if started {
		<-w.done
	}

	log.Info().Msg("config watcher stopped")
	return nil
}

// watch monitors file system events
func (w *Watcher) watch() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.configPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				log.Info().Str("file", event.Name).Str("op", event.Op.String()).Msg("config file changed, reloading")
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}

// reload loads and applies the new configuration
func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	cfg, err := LoadConfig(w.configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload config, keeping old config")
		return
	}

	if err := w.onChange(cfg); err != nil {
		log.Error().Err(err).Msg("failed to apply new config, keeping old config")
		return
	}

	log.Info().Int("assertions", len(cfg.Assertions)).Msg("config reloaded successfully")
}
