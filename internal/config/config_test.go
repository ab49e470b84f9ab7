package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, defaultTokenName, cfg.TokenName)
	assert.Equal(t, defaultTokenSymbol, cfg.TokenSymbol)
	assert.Equal(t, uint8(defaultDecimals), cfg.TokenDecimals)
	assert.Equal(t, uint64(defaultChainID), cfg.ChainID)
	assert.False(t, cfg.Paused)
	assert.Equal(t, dir, cfg.Dir())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.TokenName = "My Token"
	cfg.TokenSymbol = "MTK"
	cfg.TokenDecimals = 6
	cfg.ChainID = 8453
	cfg.LedgerAddress = "0x00000000000000000000000000000000000000ff"
	cfg.OwnerAddress = "0x0000000000000000000000000000000000000011"
	cfg.Paused = true
	require.NoError(t, cfg.Save())

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "My Token", loaded.TokenName)
	assert.Equal(t, "MTK", loaded.TokenSymbol)
	assert.Equal(t, uint8(6), loaded.TokenDecimals)
	assert.Equal(t, uint64(8453), loaded.ChainID)
	assert.Equal(t, cfg.LedgerAddress, loaded.LedgerAddress)
	assert.Equal(t, cfg.OwnerAddress, loaded.OwnerAddress)
	assert.True(t, loaded.Paused)
}

func TestLoadCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".w3ledger")
	_, err := Load(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadRejectsCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte("{not json"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, journalFile), cfg.JournalPath())
	assert.Equal(t, filepath.Join(dir, walletsFile), cfg.WalletsPath())
}
