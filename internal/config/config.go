package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings Tally needs to reach the todo service.
type Config struct {
	// Server is the todo service address, host:port or full URL.
	Server string
	// List is the id of the list to view on startup.
	List string
	// Mode selects how bulk completion is observed: "poll" or "push".
	// Load leaves it empty when the file does not pin one, so callers can
	// fall back to a saved preference before DefaultMode.
	Mode string
	// PollSeconds is the recurring fetch cadence in poll mode.
	PollSeconds int
}

// DefaultMode is the sync mode used when neither the config file, flags,
// nor saved preferences pin one.
const DefaultMode = "push"

const (
	defaultConfigPath  = "~/.config/tally/config.toml"
	defaultServer      = "127.0.0.1:8475"
	defaultList        = "inbox"
	defaultPollSeconds = 2
)

// Load locates and parses the config file, falling back to defaults when
// it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server:      defaultServer,
		List:        defaultList,
		PollSeconds: defaultPollSeconds,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Server      string `toml:"server"`
		List        string `toml:"list"`
		Mode        string `toml:"mode"`
		PollSeconds int    `toml:"poll_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Server); v != "" {
		cfg.Server = v
	}
	if v := strings.TrimSpace(raw.List); v != "" {
		cfg.List = v
	}
	if v := strings.TrimSpace(raw.Mode); v != "" {
		cfg.Mode = v
	}
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
