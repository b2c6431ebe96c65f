/*
Package config reads loanbot settings through viper.

SOURCES (later wins):
  1. Defaults below
  2. loanbot.yaml in the working directory, or --config
  3. LOANBOT_* environment variables (LOANBOT_SERVER_PORT, LOANBOT_LOG_JSON ...)
  4. Command-line flags bound by cmd/loanbot

KEYS:
  server.port, server.allowed_origins
  source            "files" reads policy.path and roster.path
                    "sqlite" reads the store at store.path (see loanbot import)
  policy.path       plain-text policy document
  roster.path       CSV or XLSX roster export
  roster.sheet      worksheet name, "" for the first sheet
  store.path        SQLite database
  chat.bands_file   JSON/YAML band table, "" for the built-in table
  chat.bands        inline band table, used when bands_file is empty
  log.json, log.debug
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	App = "loanbot"

	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Source string       `mapstructure:"source"`
	Policy struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"policy"`
	Roster struct {
		Path  string `mapstructure:"path"`
		Sheet string `mapstructure:"sheet"`
	} `mapstructure:"roster"`
	Store struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"store"`
	Chat ChatConfig `mapstructure:"chat"`
	Log  LogConfig  `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ChatConfig struct {
	BandsFile string         `mapstructure:"bands_file"`
	Bands     map[string]any `mapstructure:"bands"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key so environment overrides work without a
// config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("source", SourceFiles)
	v.SetDefault("policy.path", "Final Loan Policy.txt")
	v.SetDefault("roster.path", "EmployeeList -YOC.xlsx")
	v.SetDefault("roster.sheet", "")
	v.SetDefault("store.path", App+".db")
	v.SetDefault("chat.bands_file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// BindEnv enables LOANBOT_ prefixed environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(strings.ToUpper(App))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile loads path, or loanbot.yaml from the working directory when path
// is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.AddConfigPath(".")
	v.SetConfigName(App)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Load decodes and validates the configuration.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	switch cfg.Source {
	case SourceFiles, SourceSQLite:
	default:
		return cfg, fmt.Errorf("source must be %q or %q, got %q", SourceFiles, SourceSQLite, cfg.Source)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return cfg, fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	return cfg, nil
}
