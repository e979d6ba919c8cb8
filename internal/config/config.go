package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/dpshade/prompt-vault/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. PROMPTS_VAULT, PROMPTS_LOG_FILE.
const EnvPrefix = "PROMPTS"

// Keys read from config files, the environment and flags.
const (
	KeyVault        = "vault"
	KeyModel        = "model"
	KeyLogFile      = "log.file"
	KeyLogVerbosity = "log.verbosity"
	KeyLogJSON      = "log.json"
)

// Config holds the settings shared by the TUI and headless commands
type Config struct {
	Vault string    `mapstructure:"vault" validate:"required"`
	Model string    `mapstructure:"model"`
	Log   LogConfig `mapstructure:"log"`
}

// LogConfig controls where and how much the tool logs
type LogConfig struct {
	File      string `mapstructure:"file"`
	Verbosity int    `mapstructure:"verbosity" validate:"min=0"`
	JSON      bool   `mapstructure:"json"`
}

// BaseDir returns the per-user directory, ~/.prompts unless PROMPTS_HOME is set.
func BaseDir() string {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".prompts"
	}
	return filepath.Join(home, ".prompts")
}

// DefaultConfigPath is the user config file read when present.
func DefaultConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// DefaultLogPath is where the TUI logs, since it owns the terminal.
func DefaultLogPath() string {
	return filepath.Join(BaseDir(), "logs", "prompts.log")
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyVault, "vault")
	v.SetDefault(KeyModel, "claude-sonnet-4")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogVerbosity, 0)
	v.SetDefault(KeyLogJSON, false)
}

// New builds a viper instance layering defaults, the config file and PROMPTS_*
// environment variables. configPath may be empty to use DefaultConfigPath; a missing
// file is not an error.
func New(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
	}
	if _, err := os.Stat(configPath); err != nil {
		if explicit {
			return nil, errors.Wrapf(err, "config file %s", configPath)
		}
		return v, nil
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return v, nil
}

// Load unmarshals v into a Config and expands a leading ~ in the vault path.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, validationError(err)
	}
	cfg.Vault = expandHome(cfg.Vault)
	cfg.Log.File = expandHome(cfg.Log.File)
	return &cfg, nil
}

var validate = validator.New()

// validationError reports the first failing field with its config key
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "invalid config")
	}
	fe := fieldErrs[0]
	key := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "required":
		return errors.ValidationError(key, "a non-empty value")
	case "min":
		return errors.ValidationError(key, "at least "+fe.Param())
	default:
		return errors.ValidationError(key, "a valid value")
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
