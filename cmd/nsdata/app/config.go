package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Output  string

	// Config file
	ConfigFile string

	// Collection
	Concurrency    int
	RegistryFile   string
	CatalogFile    string
	DatabankAPIKey string
	// Datasets holds per-dataset arguments keyed by dataset name.
	Datasets map[string]dataset.Args

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (NSDATA_ prefix)
// 3. .env files
// 4. Config file (~/.nsdata.yaml or ./.nsdata.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file. An empty path
// searches the standard locations.
func LoadConfigFile(path string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("concurrency", constants.DefaultConcurrency)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
	if err := v.BindEnv("databank_api_key", constants.EnvPrefix+"_DATABANK_API_KEY", "IFRC_API_KEY"); err != nil {
		return nil, errors.NewConfigError("config", "binding databank_api_key", err)
	}
	// LOG_LEVEL without prefix is honoured like the logging package does.
	if err := v.BindEnv("log_level", constants.EnvPrefix+"_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, errors.NewConfigError("config", "binding log_level", err)
	}

	if path == "" {
		path = v.GetString("config")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".nsdata")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file must exist; the search locations are optional.
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	datasets, err := datasetArgs(v.GetStringMap("datasets"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Output:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		Concurrency:    v.GetInt("concurrency"),
		RegistryFile:   v.GetString("registry_file"),
		CatalogFile:    v.GetString("catalog_file"),
		DatabankAPIKey: v.GetString("databank_api_key"),
		Datasets:       datasets,

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if config.Concurrency < 1 {
		return nil, errors.NewConfigError("config", fmt.Sprintf("concurrency must be at least 1, got %d", config.Concurrency), nil)
	}
	return config, nil
}

// datasetArgs converts the datasets section of the config file. Values may
// be strings, numbers or booleans.
func datasetArgs(raw map[string]any) (map[string]dataset.Args, error) {
	out := make(map[string]dataset.Args, len(raw))
	for name, section := range raw {
		values, ok := section.(map[string]any)
		if !ok {
			return nil, errors.NewConfigError("config", fmt.Sprintf("datasets.%s must be a mapping of argument names to values", name), nil)
		}
		args := make(dataset.Args, len(values))
		for k, val := range values {
			switch val.(type) {
			case map[string]any, []any:
				return nil, errors.NewConfigError("config", fmt.Sprintf("datasets.%s.%s must be a scalar", name, k), nil)
			}
			args[k] = fmt.Sprint(val)
		}
		out[name] = args
	}
	return out, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, output, logLevel string, concurrency int) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if output != "" {
		c.Output = output
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if concurrency > 0 {
		c.Concurrency = concurrency
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// godotenv.Load never overrides variables that are already set, so
	// .env.local is loaded first to take precedence over .env.
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
