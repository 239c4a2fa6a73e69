package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/logsift/pkg/logsift/config"
	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "logsift",
		Short: "Extract dated log records from archives and service folders",
		Long: `Logsift pulls timestamped records out of diagnostic archives (.zip, .tar.gz)
and local service log folders, filtered to a date window.

Commands run against the logsiftd daemon when it is up and fall back to
in-process work otherwise. Use --no-daemon to force in-process work.

Examples:
  logsift extract bundle.zip --days 7        # Last week of records
  logsift extract s3://bucket/diag.tar.gz    # Archive from object storage
  logsift analyze bundle.zip                 # Structure of an archive
  logsift folders --root /var/log/services   # Local service folders
  logsift local api worker --start 2024-01-01
  logsift tail api worker                    # Follow new records`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/logsift/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "root directory of local service folders")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format ("+strings.Join(formatNames(), ", ")+")")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the result cache")
	rootCmd.PersistentFlags().Bool("no-daemon", false, "bypass the daemon, work in-process")

	// Bind flags to viper
	_ = viper.BindPFlag("local.root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("no_daemon", rootCmd.PersistentFlags().Lookup("no-daemon"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "logsift"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "logsift"))
		}
	}

	viper.SetEnvPrefix("LOGSIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// setup decodes the configuration and starts logging before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initializeLogging(cfg, getVerbose()); err != nil {
		return err
	}
	printVerbose("command %s, config %s", cmd.CommandPath(), viper.ConfigFileUsed())
	return nil
}

// loadConfig decodes the global viper state.
func loadConfig() (*config.Config, error) {
	return config.Decode(viper.GetViper())
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
