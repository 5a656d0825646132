package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/atomicfile"
)

// VaultConfig represents vault-level configuration from magpie.yaml.
type VaultConfig struct {
	// CoerceDateKeys controls the date-like key name heuristic: string
	// values under keys containing "date" (or named due/start/end/
	// created/modified) are pre-parsed to dates before evaluation.
	// Sort and comparison semantics depend on this, so it is a vault
	// setting rather than a hardcoded behavior. Default: true.
	CoerceDateKeys *bool `yaml:"coerce_date_keys,omitempty"`

	// DefaultExportFormat is the format used by `mgp export` when no
	// --format flag is given. One of: csv, json, markdown. Default: csv.
	DefaultExportFormat string `yaml:"default_export_format,omitempty"`

	// AutoIndex keeps the metadata index warm during queries (default: true).
	// Disable for read-only vaults where .magpie must not be created.
	AutoIndex *bool `yaml:"auto_index,omitempty"`
}

// IsCoerceDateKeysEnabled returns the date coercion setting (default: true).
func (vc *VaultConfig) IsCoerceDateKeysEnabled() bool {
	if vc.CoerceDateKeys == nil {
		return true
	}
	return *vc.CoerceDateKeys
}

// IsAutoIndexEnabled returns the auto index setting (default: true).
func (vc *VaultConfig) IsAutoIndexEnabled() bool {
	if vc.AutoIndex == nil {
		return true
	}
	return *vc.AutoIndex
}

// GetDefaultExportFormat returns the export format (default: "csv").
func (vc *VaultConfig) GetDefaultExportFormat() string {
	if vc.DefaultExportFormat == "" {
		return "csv"
	}
	return vc.DefaultExportFormat
}

// DefaultVaultConfig returns the default vault configuration.
func DefaultVaultConfig() *VaultConfig {
	return &VaultConfig{}
}

// LoadVaultConfig loads vault configuration from magpie.yaml.
// Returns default config if file doesn't exist.
func LoadVaultConfig(vaultPath string) (*VaultConfig, error) {
	configPath := filepath.Join(vaultPath, "magpie.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultVaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault config %s: %w", configPath, err)
	}

	var config VaultConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse vault config %s: %w", configPath, err)
	}
	return &config, nil
}

// SaveVaultConfig writes the vault config back to magpie.yaml.
func SaveVaultConfig(vaultPath string, cfg *VaultConfig) error {
	configPath := filepath.Join(vaultPath, "magpie.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomicfile.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write magpie.yaml: %w", err)
	}
	return nil
}
