package cli

import (
	"fmt"
	"strings"

	"buidl-explorer-go/pkg/config"

	"github.com/pelletier/go-toml/v2"
)

// ShowConfig displays the current configuration
func (a *App) ShowConfig() error {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}

// SetConfig sets a configuration value
// Format: section.key=value (e.g., "backend.base_url=http://localhost:5001")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	if err := a.cfg.Set(parts[0], parts[1]); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	// a changed base URL or timeout needs a fresh client
	a.service = nil

	return a.saveConfig(a.cfg)
}

func (a *App) saveConfig(cfg *config.Config) error {
	if a.configPath != "" {
		return config.SaveTo(a.configPath, cfg)
	}
	return config.Save(cfg)
}
