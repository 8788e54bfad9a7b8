package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/formtree/internal/config"
	"github.com/zjrosen/formtree/internal/log"
)

const defaultConfigPath = ".formtree/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "formtree",
	Short:   "Inspect dynamically registered form trees",
	Long:    `formtree loads form layouts into a per-session registry and shows the resulting tree and registration events.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .formtree/config.yaml or ~/.config/formtree/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also FORMTREE_DEBUG)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	cfg = readConfig(viper.GetViper(), cfgFile)
}

// readConfig resolves the config file and unmarshals it over the defaults.
// Lookup order: explicit file, .formtree/config.yaml, ~/.config/formtree/config.yaml.
// When nothing is found a commented default is written to .formtree/config.yaml.
func readConfig(v *viper.Viper, explicit string) config.Config {
	defaults := config.Defaults()
	v.SetDefault("log_path", defaults.LogPath)
	v.SetDefault("watch_debounce", defaults.WatchDebounce)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	v.SetEnvPrefix("formtree")
	_ = v.BindEnv("debug")
	_ = v.BindEnv("log_path", "FORMTREE_LOG")

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		v.SetConfigFile(defaultConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "formtree"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				v.SetConfigFile(defaultConfigPath)
				_ = v.ReadInConfig()
			}
		}
	}

	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		return defaults
	}
	return c
}

// initLogging enables file logging when debug is on. The returned cleanup
// is always safe to call.
func initLogging(c config.Config) (func(), error) {
	if !c.Debug {
		return func() {}, nil
	}
	logPath := c.LogPath
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, "formtree")
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "formtree starting",
		"version", version,
		"config", viper.ConfigFileUsed(),
		"logPath", logPath)
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
