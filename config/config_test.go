package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "./rewardpool-data", cfg.DataDir)
	require.Equal(t, "rewardpoold", cfg.ServiceName)
	require.Equal(t, "REWARDPOOL_RPC_TOKEN", cfg.RPCTokenEnv)
	require.Equal(t, 5*time.Minute, cfg.NonceTTL())

	// The default file is written to disk and loads back unchanged.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `RPCAddress = "127.0.0.1:9090"
DataDir = "/var/lib/rewardpool"
ServiceName = "rewards-test"
NonceTTLSeconds = 60
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", cfg.RPCAddress)
	require.Equal(t, "/var/lib/rewardpool", cfg.DataDir)
	require.Equal(t, "rewards-test", cfg.ServiceName)
	require.Equal(t, time.Minute, cfg.NonceTTL())
	// Unset fields fall back to defaults.
	require.Equal(t, "REWARDPOOL_RPC_TOKEN", cfg.RPCTokenEnv)
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("RPCAddress = [not toml"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
