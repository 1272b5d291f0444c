package cmd

import (
	"fmt"
	"os"

	"github.com/TFMV/fsview/internal/app"
	"github.com/TFMV/fsview/internal/config"
	"github.com/TFMV/fsview/internal/logging"
	"github.com/TFMV/fsview/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fsview",
	Short: "Filesystem projection and change notification for document editors",
	Long: `fsview projects folders into ordered trees of the documents they hold,
and reports filesystem changes for the folders being shown.

It runs as an HTTP backend (fsview serve) or directly from the command line.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fsview.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("log-dev", false, "Use human-readable development logging")
	rootCmd.PersistentFlags().String("settings-dir", "", "Directory holding settings.json (default is the user config dir)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.development", rootCmd.PersistentFlags().Lookup("log-dev"))
	viper.BindPFlag("settings.dir", rootCmd.PersistentFlags().Lookup("settings-dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".fsview" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fsview")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

// runtime bundles what every subcommand builds from the loaded config.
type runtime struct {
	config  config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	facade  *app.Facade
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	facade, err := app.New(cfg,
		app.WithLogger(logger),
		app.WithMetrics(m),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &runtime{config: cfg, logger: logger, metrics: m, facade: facade}, nil
}

func (r *runtime) Close() {
	if err := r.facade.Close(); err != nil {
		r.logger.Warn("error releasing watches", zap.Error(err))
	}
	_ = r.logger.Sync()
}
