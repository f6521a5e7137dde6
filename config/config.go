package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress  string `toml:"RPCAddress"`
	DataDir     string `toml:"DataDir"`
	ServiceName string `toml:"ServiceName"`
	// RPCTokenEnv names the environment variable holding the optional static
	// bearer token for mutating RPC methods. Empty disables token auth.
	RPCTokenEnv string `toml:"RPCTokenEnv"`
	// NonceTTLSeconds bounds how long a signed request nonce stays valid.
	NonceTTLSeconds int64 `toml:"NonceTTLSeconds"`
}

// NonceTTL returns the signed-request validity window as a duration.
func (cfg *Config) NonceTTL() time.Duration {
	if cfg == nil || cfg.NonceTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(cfg.NonceTTLSeconds) * time.Second
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./rewardpool-data"
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "rewardpoold"
	}
	if strings.TrimSpace(cfg.RPCTokenEnv) == "" {
		cfg.RPCTokenEnv = "REWARDPOOL_RPC_TOKEN"
	}
	if cfg.NonceTTLSeconds <= 0 {
		cfg.NonceTTLSeconds = 300
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:      ":8080",
		DataDir:         "./rewardpool-data",
		ServiceName:     "rewardpoold",
		RPCTokenEnv:     "REWARDPOOL_RPC_TOKEN",
		NonceTTLSeconds: 300,
	}

	if err := persist(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
