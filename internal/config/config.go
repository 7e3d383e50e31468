// Package config loads and hot-reloads the reconstruction pipeline's
// runtime configuration: where the vocabulary and confusion-pair
// corpus live, how to reach the masked-LM endpoint, and the
// concurrency cap for multi-page exports.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LMConfig configures the HTTP masked-LM engine.
type LMConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
}

// Config is the full set of tunables the CLI driver and pipeline read.
type Config struct {
	VocabPath     string   `mapstructure:"vocab_path"`
	CorpusPath    string   `mapstructure:"corpus_path"`
	LM            LMConfig `mapstructure:"lm"`
	PageConcurrency int    `mapstructure:"page_concurrency"`
}

// DefaultConfig returns the configuration used when no file or
// environment override is present.
func DefaultConfig() *Config {
	return &Config{
		VocabPath: "vocab.txt",
		CorpusPath: "corpus.yaml",
		LM: LMConfig{
			Endpoint: "http://localhost:8501/v1/models/maskedlm:predict",
			Timeout:  10 * time.Second,
			Retries:  3,
		},
		PageConcurrency: 4,
	}
}

// Manager loads configuration once and supports hot-reload via
// fsnotify-backed viper watching, mirroring the teacher's config
// manager.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a Manager and loads the initial configuration.
// cfgFile, if non-empty, is used in place of the default search path.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("vocab_path", defaults.VocabPath)
	viper.SetDefault("corpus_path", defaults.CorpusPath)
	viper.SetDefault("lm.endpoint", defaults.LM.Endpoint)
	viper.SetDefault("lm.timeout", defaults.LM.Timeout)
	viper.SetDefault("lm.retries", defaults.LM.Retries)
	viper.SetDefault("page_concurrency", defaults.PageConcurrency)

	viper.SetEnvPrefix("HEBREWSCANNER")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hebrewscanner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.hebrewscanner")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration.
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback invoked after every successful reload.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reload: edits to the active config file
// trigger a reparse and notify every registered callback.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}
