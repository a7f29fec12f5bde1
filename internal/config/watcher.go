package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// ConfigWatcher reloads configuration when files under the loader's base
// path change. File watching only runs in development; elsewhere the watcher
// just holds the initial config.
type ConfigWatcher struct {
	config    *Config
	loader    *Loader
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewConfigWatcher creates a watcher seeded with initial.
func NewConfigWatcher(initial *Config, loader *Loader, logger *zap.Logger) (*ConfigWatcher, error) {
	watcher := &ConfigWatcher{
		config: initial,
		loader: loader,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if !initial.IsDevelopment() || loader == nil {
		logger.Info("Configuration hot reloading disabled",
			zap.String("environment", string(initial.Environment)),
		)
		return watcher, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	watcher.watcher = fsWatcher

	if err := watcher.watchConfigFiles(); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config files: %w", err)
	}

	go watcher.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("environment", string(initial.Environment)),
		zap.String("dir", loader.BasePath()),
	)
	return watcher, nil
}

// watchConfigFiles adds the config directory tree to the watcher.
func (w *ConfigWatcher) watchConfigFiles() error {
	configDir := w.loader.BasePath()
	if _, err := os.Stat(configDir); err != nil {
		w.logger.Warn("Config directory not found, nothing to watch",
			zap.String("dir", configDir),
		)
		return nil
	}

	return filepath.Walk(configDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return nil
	})
}

// watchLoop monitors for file changes and triggers reloads.
func (w *ConfigWatcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}

			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := w.Reload(); err != nil {
					w.logger.Error("Configuration reload failed", zap.Error(err))
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// Reload loads configuration again and, if it changed, swaps it in and
// notifies callbacks. An invalid configuration leaves the current one in
// place.
func (w *ConfigWatcher) Reload() error {
	if w.loader == nil {
		return fmt.Errorf("watcher has no loader")
	}

	newConfig, err := w.loader.Load()
	if err != nil {
		return err
	}

	w.mu.Lock()
	oldConfig := w.config
	if configsEqual(oldConfig, newConfig) {
		w.mu.Unlock()
		w.logger.Debug("Configuration unchanged after reload")
		return nil
	}
	w.config = newConfig
	w.mu.Unlock()

	w.logConfigChanges(oldConfig, newConfig)
	w.notifyCallbacks(newConfig)
	return nil
}

// OnChange registers a callback to be called when configuration changes.
func (w *ConfigWatcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// GetConfig returns the current configuration.
func (w *ConfigWatcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching. It is safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}

// notifyCallbacks runs every callback in its own goroutine. Panics are
// recovered and logged.
func (w *ConfigWatcher) notifyCallbacks(newConfig *Config) {
	w.mu.RLock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for i, callback := range callbacks {
		go func(idx int, cb func(*Config)) {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Callback panicked",
						zap.Int("callback_index", idx),
						zap.Any("panic", r),
					)
				}
			}()

			cb(newConfig)
		}(i, callback)
	}
}

func configsEqual(a, b *Config) bool {
	ac, bc := *a, *b
	ac.LoadedFrom, bc.LoadedFrom = nil, nil
	return reflect.DeepEqual(ac, bc)
}

// logConfigChanges logs the settings that can change at runtime.
func (w *ConfigWatcher) logConfigChanges(old, new *Config) {
	changes := make([]string, 0)

	if old.Boardroom.MaxHistoryTurns != new.Boardroom.MaxHistoryTurns {
		changes = append(changes, fmt.Sprintf("boardroom.max_history_turns: %d -> %d", old.Boardroom.MaxHistoryTurns, new.Boardroom.MaxHistoryTurns))
	}
	if old.Boardroom.FallbackText != new.Boardroom.FallbackText {
		changes = append(changes, "boardroom.fallback_text")
	}
	if old.Logging.Level != new.Logging.Level {
		changes = append(changes, fmt.Sprintf("logging.level: %s -> %s", old.Logging.Level, new.Logging.Level))
	}
	if old.Store != new.Store || old.Server != new.Server {
		w.logger.Warn("Store and server changes need a restart")
	}

	w.logger.Info("Configuration reloaded",
		zap.Strings("changes", changes),
	)
}

func isConfigFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".json"
}

// ============================================================================
// CONFIGURATION MANAGER WITH HOT RELOAD
// ============================================================================

// ComponentReloader applies a new configuration to one component.
type ComponentReloader struct {
	name     string
	reloadFn func(*Config) error
	logger   *zap.Logger
}

// Reload reloads the component with new configuration.
func (r *ComponentReloader) Reload(config *Config) {
	if err := r.reloadFn(config); err != nil {
		r.logger.Error("Failed to reload component",
			zap.String("component", r.name),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("Component reloaded",
		zap.String("component", r.name),
	)
}

// ConfigManager fans configuration changes out to registered components.
type ConfigManager struct {
	watcher   *ConfigWatcher
	reloaders []*ComponentReloader
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewConfigManager creates a manager around a new ConfigWatcher.
func NewConfigManager(config *Config, loader *Loader, logger *zap.Logger) (*ConfigManager, error) {
	watcher, err := NewConfigWatcher(config, loader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	manager := &ConfigManager{
		watcher: watcher,
		logger:  logger,
	}
	watcher.OnChange(manager.handleConfigChange)

	return manager, nil
}

// RegisterComponent registers a component for configuration reloading.
// Components are reloaded in registration order.
func (m *ConfigManager) RegisterComponent(name string, reloadFn func(*Config) error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reloaders = append(m.reloaders, &ComponentReloader{
		name:     name,
		reloadFn: reloadFn,
		logger:   m.logger,
	})
}

func (m *ConfigManager) handleConfigChange(config *Config) {
	m.mu.RLock()
	reloaders := make([]*ComponentReloader, len(m.reloaders))
	copy(reloaders, m.reloaders)
	m.mu.RUnlock()

	for _, reloader := range reloaders {
		reloader.Reload(config)
	}
}

// Watcher returns the underlying watcher.
func (m *ConfigManager) Watcher() *ConfigWatcher {
	return m.watcher
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *Config {
	return m.watcher.GetConfig()
}

// Stop stops the configuration manager.
func (m *ConfigManager) Stop() {
	m.watcher.Stop()
}
