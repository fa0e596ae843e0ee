package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads a Config from a YAML file and the environment. If path is empty,
// viper searches for "thea.yaml" in the working directory and ./configs.
// Environment variables override file values with the prefix THEA, e.g.
// THEA_RPC_ADDR or THEA_CONTRACTS_EXCHANGE.
//
// The returned Config is already validated (implicit defaults applied).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("thea")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("thea")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine when env vars supply the required fields.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	return cfg, nil
}
