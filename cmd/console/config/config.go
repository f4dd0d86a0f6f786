package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// AccountConfig seeds one participant's external balances.
type AccountConfig struct {
	Address  string `yaml:"address"`
	BalanceA string `yaml:"balance_a"`
	BalanceB string `yaml:"balance_b"`
}

// ConsoleConfig configures the interactive pool console.
type ConsoleConfig struct {
	AssetA     string          `yaml:"asset_a"`
	AssetB     string          `yaml:"asset_b"`
	ListenAddr string          `yaml:"listen_addr"`
	LogFile    string          `yaml:"log_file"`
	LogLevel   string          `yaml:"log_level"`
	Accounts   []AccountConfig `yaml:"accounts"`
}

// LoadConfig reads a configuration file from the given path and unmarshals it
// into a ConsoleConfig struct.
func LoadConfig(path string) (*ConsoleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ConsoleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfig returns a ready-to-run local setup: one asset pair and one
// funded account, with the event stream disabled.
func DefaultConfig() *ConsoleConfig {
	return &ConsoleConfig{
		AssetA:   "0x00000000000000000000000000000000000000aa",
		AssetB:   "0x00000000000000000000000000000000000000bb",
		LogFile:  "console.log",
		LogLevel: "info",
		Accounts: []AccountConfig{
			{
				Address:  "0x0000000000000000000000000000000000000001",
				BalanceA: "1000000000000000000000",
				BalanceB: "1000000000000000000000",
			},
		},
	}
}
