package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formintake/internal/config"
	"github.com/goliatone/go-formintake/pkg/logger"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logJSON    bool
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "formintake",
		Short:         "Form intake service and tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "emit logs as JSON")

	root.AddCommand(
		serveCmd(flags),
		classifyCmd(flags),
		submitCmd(flags),
	)
	return root
}

// load reads configuration and builds the process logger, applying flag
// overrides on top of the configured values.
func (f *globalFlags) load(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = f.logJSON
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLevel(cfg.Log.Level)
	logCfg.JSON = cfg.Log.JSON
	logCfg.AddSource = cfg.Log.Source
	logCfg.Output = cmd.ErrOrStderr()
	logger.Init(logCfg)
	return cfg, logger.GetDefault(), nil
}
