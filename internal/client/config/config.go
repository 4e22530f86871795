package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ORIONTASK"

// Config holds runtime settings for the OrionTask CLI.
type Config struct {
	ServerBaseURL string `mapstructure:"server_base_url"`
	DataDir       string `mapstructure:"data_dir"`
	LogLevel      string `mapstructure:"log_level"`
}

const (
	keyServerBaseURL = "server_base_url"
	keyDataDir       = "data_dir"
	keyLogLevel      = "log_level"

	flagConfig = "config"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080/api/v1"
	c.DataDir = "~/.oriontask"
	c.LogLevel = "info"
}

// DatabasePath is the SQLite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "oriontask.db")
}

// SecretPath is the per-installation key file the credential vault derives
// its key from.
func (c *Config) SecretPath() string {
	return filepath.Join(c.DataDir, "secret.key")
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP("addr", "a", "", "base URL of the OrionTask API")
	fs.StringP("data-dir", "d", "", "directory for the local database and key file")
	fs.StringP("log-level", "l", "", "log level: debug, info, warn, error")
	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
}

// LoadConfig builds a Config from defaults, the optional config file, the
// environment and the flags in fs. fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	def := &Config{}
	def.LoadDefaults()

	v := viper.New()
	v.SetDefault(keyServerBaseURL, def.ServerBaseURL)
	v.SetDefault(keyDataDir, def.DataDir)
	v.SetDefault(keyLogLevel, def.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range map[string]string{
			keyServerBaseURL: "addr",
			keyDataDir:       "data-dir",
			keyLogLevel:      "log-level",
		} {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}

		if f := fs.Lookup(flagConfig); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	dir, err := homedir.Expand(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("expand data dir: %w", err)
	}
	cfg.DataDir = dir
	cfg.ServerBaseURL = strings.TrimRight(cfg.ServerBaseURL, "/")

	return cfg, nil
}
