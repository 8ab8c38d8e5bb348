package manager

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hoppxi/filekit/config"
	"github.com/spf13/viper"
)

const EnvPrefix = "FILEKIT"

var (
	once sync.Once
	v    *viper.Viper
	err  error
)

type ConfigManager struct {
	file string
}

var Config = &ConfigManager{}

// SetFile overrides the config file location. It has no effect once Load
// has run.
func (c *ConfigManager) SetFile(path string) {
	c.file = path
}

// Path returns the config file in use: the one set with SetFile, else
// <user config dir>/filekit/filekit.yaml.
func (c *ConfigManager) Path() (string, error) {
	if c.file != "" {
		return c.file, nil
	}
	return DefaultPath()
}

func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "filekit", "filekit.yaml"), nil
}

// Load reads the configuration once. A missing config file is not an error.
func (c *ConfigManager) Load() (*viper.Viper, error) {
	once.Do(func() {
		path, perr := c.Path()
		if perr != nil {
			log.Printf("[config] no user config dir: %v", perr)
			path = ""
		}
		v, err = New(path)
	})
	return v, err
}

// New builds a viper instance from the embedded defaults, the file at path
// when it exists and FILEKIT_* environment variables.
func New(path string) (*viper.Viper, error) {
	defaults := viper.New()
	defaults.SetConfigType("yaml")
	if err := defaults.ReadConfig(bytes.NewReader(config.Default())); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}
	nv := viper.New()
	for _, key := range defaults.AllKeys() {
		nv.SetDefault(key, defaults.Get(key))
	}

	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if path == "" {
		return nv, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("[config] %s not found, using defaults", path)
			return nv, nil
		}
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := config.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	nv.SetConfigFile(path)
	if err := nv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	log.Printf("[config] loaded %s", path)
	return nv, nil
}

// Watch calls onChange whenever the loaded config file changes.
func (c *ConfigManager) Watch(onChange func()) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[config] %s changed", e.Name)
		onChange()
	})
	v.WatchConfig()
}
