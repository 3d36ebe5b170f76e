// Package config loads the client and server configuration from YAML
// files, falling back to defaults when no file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "timekeep"
	clientFileName = "config.yaml"
	serverFileName = "server.yaml"
)

// Client is the CLI configuration.
type Client struct {
	// ServerURL is the backend base URL. Empty means fully offline use.
	ServerURL string `yaml:"server_url" validate:"omitempty,url"`

	// DataDir overrides the XDG data directory for the local slots.
	DataDir string `yaml:"data_dir"`

	// DebounceMs is the remote-write debounce window in milliseconds.
	DebounceMs int `yaml:"debounce_ms" validate:"gte=0"`

	// DisableKeyring skips OS keyring access for token storage.
	DisableKeyring bool `yaml:"disable_keyring"`
}

// Server is the backend configuration. The token secret is deliberately
// not a file setting; it comes from the environment.
type Server struct {
	Addr    string `yaml:"addr" validate:"required"`
	DBPath  string `yaml:"db_path" validate:"required"`
	LogFile string `yaml:"log_file"`
}

// DefaultClient returns the client defaults.
func DefaultClient() Client {
	return Client{
		ServerURL:  "http://localhost:3000",
		DebounceMs: 500,
	}
}

// DefaultServer returns the server defaults.
func DefaultServer() Server {
	return Server{
		Addr:   ":3000",
		DBPath: "timekeep.db",
	}
}

// Debounce converts the configured window to a duration, zero meaning
// "use the engine default".
func (c Client) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ClientPath returns the default client config file location.
func ClientPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, configDirName, clientFileName), nil
}

// ServerPath returns the default server config file location.
func ServerPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, configDirName, serverFileName), nil
}

// LoadClient reads the client config from path ("" means the default
// location). A missing file yields the defaults.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()
	if err := loadYAML(path, ClientPath, &cfg); err != nil {
		return Client{}, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Client{}, fmt.Errorf("invalid client config: %w", err)
	}
	return cfg, nil
}

// LoadServer reads the server config from path ("" means the default
// location). A missing file yields the defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()
	if err := loadYAML(path, ServerPath, &cfg); err != nil {
		return Server{}, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string, defaultPath func() (string, error), out any) error {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = defaultPath()
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return fmt.Errorf("config file not found at %s", path)
		}
		return nil // defaults
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid YAML in config file %s: %w", path, err)
	}
	return nil
}
