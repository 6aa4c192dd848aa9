package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rapidslides/config"
)

// ConfigProvider defines the configuration read interface.
type ConfigProvider interface {
	GetConfig() (config.Config, error)
}

// ConfigPersister defines the configuration persistence interface.
type ConfigPersister interface {
	SaveConfig(cfg config.Config) error
}

// ConfigNotifier defines the configuration change notification interface.
type ConfigNotifier interface {
	OnConfigChanged(callback func(config.Config))
}

// ConfigService encapsulates all configuration management logic.
// Implements Service, ConfigProvider, ConfigPersister, ConfigNotifier.
type ConfigService struct {
	storageDir string
	logger     func(string)
	callbacks  []func(config.Config)
	mu         sync.RWMutex
}

// NewConfigService creates a new ConfigService instance.
func NewConfigService(logger func(string)) *ConfigService {
	return &ConfigService{
		logger:    logger,
		callbacks: make([]func(config.Config), 0),
	}
}

// Name returns the service name.
func (cs *ConfigService) Name() string {
	return "config"
}

// Initialize ensures the storage directory exists.
func (cs *ConfigService) Initialize(ctx context.Context) error {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return WrapError("config", "Initialize", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return WrapError("config", "Initialize", fmt.Errorf("failed to create storage dir: %w", err))
	}
	cs.log(fmt.Sprintf("ConfigService initialized, storage dir: %s", dir))
	return nil
}

// Shutdown closes the config service (no-op).
func (cs *ConfigService) Shutdown() error {
	return nil
}

// GetStorageDir returns the storage directory path (~/RapidSlides).
func (cs *ConfigService) GetStorageDir() (string, error) {
	cs.mu.RLock()
	sd := cs.storageDir
	cs.mu.RUnlock()

	if sd != "" {
		return sd, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", WrapError("config", "GetStorageDir", err)
	}
	return filepath.Join(home, "RapidSlides"), nil
}

// SetStorageDir overrides the storage directory (mainly for tests).
func (cs *ConfigService) SetStorageDir(dir string) {
	cs.mu.Lock()
	cs.storageDir = dir
	cs.mu.Unlock()
}

// GetConfigPath returns the config file path.
func (cs *ConfigService) GetConfigPath() (string, error) {
	dir, err := cs.GetStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultConfig returns the configuration a fresh deployment starts with.
func (cs *ConfigService) DefaultConfig() config.Config {
	dir, _ := cs.GetStorageDir()
	return config.Config{
		LLMProvider:  "OpenAI",
		ModelName:    "gpt-4o",
		MaxTokens:    8192,
		Language:     "English",
		DataCacheDir: dir,
		QuerySpace: config.QuerySpace{
			Engine: "sqlite",
		},
		Styles: []config.VisualStyle{
			{
				ID:          "clean-light",
				Name:        "Clean Light",
				Description: "White background, dark text, minimal accents",
				CSS:         ".slide{background:#fff;color:#1b2636;font-family:sans-serif}",
				Enabled:     true,
			},
			{
				ID:          "executive-dark",
				Name:        "Executive Dark",
				Description: "Dark background with high-contrast highlights",
				CSS:         ".slide{background:#1b2636;color:#f3f5f9;font-family:sans-serif}",
				Enabled:     true,
			},
		},
		ActiveStyle: "clean-light",
		Deck: config.DeckPolicy{
			MaxSlides: 50,
		},
		LockTimeoutMs: 10000,
	}
}

// GetConfig loads the config file from disk, falling back to defaults when
// the file does not exist yet.
func (cs *ConfigService) GetConfig() (config.Config, error) {
	path, err := cs.GetConfigPath()
	if err != nil {
		return config.Config{}, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cs.DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, WrapError("config", "GetConfig", err)
	}

	cfg := cs.DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, WrapError("config", "GetConfig", fmt.Errorf("invalid config file: %w", err))
	}
	return cfg, nil
}

// SaveConfig persists the config and notifies all registered callbacks.
func (cs *ConfigService) SaveConfig(cfg config.Config) error {
	path, err := cs.GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return WrapError("config", "SaveConfig", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return WrapError("config", "SaveConfig", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return WrapError("config", "SaveConfig", err)
	}

	cs.mu.RLock()
	callbacks := make([]func(config.Config), len(cs.callbacks))
	copy(callbacks, cs.callbacks)
	cs.mu.RUnlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	cs.log("Configuration saved and change callbacks notified")
	return nil
}

// OnConfigChanged registers a callback invoked after every successful save.
func (cs *ConfigService) OnConfigChanged(callback func(config.Config)) {
	cs.mu.Lock()
	cs.callbacks = append(cs.callbacks, callback)
	cs.mu.Unlock()
}

func (cs *ConfigService) log(msg string) {
	if cs.logger != nil {
		cs.logger(msg)
	}
}
