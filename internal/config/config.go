// Package config persists the w3ledger instance configuration as JSON
// under a dot directory (default ~/.w3ledger).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultTokenName    = "Wrapped Demo Token"
	defaultTokenSymbol  = "WDT"
	defaultTokenVersion = "1"
	defaultDecimals     = 18
	defaultChainID      = 1

	configFile  = "config.json"
	walletsFile = "wallets.json"
	journalFile = "journal.db"
)

// Config holds all w3ledger configuration. The token identity fields
// feed the permit domain separator: changing any of them invalidates
// every previously signed permit.
type Config struct {
	TokenName     string `json:"token_name"`
	TokenSymbol   string `json:"token_symbol"`
	TokenDecimals uint8  `json:"token_decimals"`
	TokenVersion  string `json:"token_version"`
	ChainID       uint64 `json:"chain_id"`
	LedgerAddress string `json:"ledger_address"` // verifying-contract identity of this instance
	OwnerAddress  string `json:"owner_address"`  // may mint and burn
	Paused        bool   `json:"paused"`

	// internal: config dir path used for Save()
	configDir string
}

// Dir returns the configuration directory.
func (c *Config) Dir() string { return c.configDir }

// JournalPath returns the SQLite journal file path.
func (c *Config) JournalPath() string {
	return filepath.Join(c.configDir, journalFile)
}

// WalletsPath returns the wallets JSON file path.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// Load reads config from dir (or creates defaults). dir defaults to
// ~/.w3ledger.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3ledger")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

func defaults(dir string) *Config {
	return &Config{
		TokenName:     defaultTokenName,
		TokenSymbol:   defaultTokenSymbol,
		TokenDecimals: defaultDecimals,
		TokenVersion:  defaultTokenVersion,
		ChainID:       defaultChainID,
		configDir:     dir,
	}
}
