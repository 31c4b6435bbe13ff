// Package settings holds the bot-wide settings file, separate from the
// per-character profiles: everything here configures the runtime, not the
// character being played.
package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Settings contains all settings that can be configured for the bot runtime.
type Settings struct {
	Control struct {
		// Seed drives all randomness; a fixed seed replays identically.
		Seed uint64
		// HaltOnStart starts the loop suspended until resumed over the hub.
		HaltOnStart bool
	}
	Bridge struct {
		// InjectorURL is the websocket endpoint of the input injector.
		InjectorURL string
		// DetectorURL is the websocket endpoint of the detection service.
		DetectorURL string
	}
	Hub struct {
		// ListenAddr serves the control websocket, empty disables it.
		ListenAddr string
		// SnapshotIntervalTicks is how often status snapshots broadcast.
		SnapshotIntervalTicks int
	}
	Observability struct {
		// SentryDSN enables crash reporting when set.
		SentryDSN string
		// StatsViewAddr serves live runtime charts when set.
		StatsViewAddr string
		// Debug lowers the log level to debug.
		Debug bool
	}
}

// DefaultSettings returns the settings a fresh install starts from.
func DefaultSettings() Settings {
	settings := Settings{}
	settings.Control.Seed = 1
	settings.Bridge.InjectorURL = "ws://127.0.0.1:9002"
	settings.Bridge.DetectorURL = "ws://127.0.0.1:9003"
	settings.Hub.ListenAddr = "127.0.0.1:9001"
	settings.Hub.SnapshotIntervalTicks = 15
	return settings
}

// SaveDefault will create and save the default settings file. If the file
// already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return fmt.Errorf("failed encoding default settings: %v", err)
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed creating settings file: %v", err)
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from the settings file, and return an error if
// the file does not exist.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading config: %v", err)
	}

	var settings Settings
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %v", err)
	}
	return settings, nil
}
