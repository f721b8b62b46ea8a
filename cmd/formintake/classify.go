package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formintake"
	"github.com/goliatone/go-formintake/pkg/logger"
	"github.com/goliatone/go-formintake/pkg/schema"
)

func classifyCmd(flags *globalFlags) *cobra.Command {
	var sources []string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the field classification of every catalog form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				sources = cfg.Catalog.Sources
			}
			if len(sources) == 0 {
				return fmt.Errorf("classify: no catalog sources; pass --source or configure catalog.sources")
			}

			var loaderOpts []schema.LoaderOption
			if cfg.Catalog.AllowHTTP {
				loaderOpts = append(loaderOpts, schema.WithHTTPFallback(cfg.Catalog.HTTPTimeout))
			}
			c, err := formintake.NewCatalog(sources, loaderOpts...)
			if err != nil {
				return err
			}

			ctx := logger.ContextWithLogger(cmd.Context(), log)
			report, err := formintake.ClassifyCatalog(ctx, c)
			if err != nil {
				return err
			}
			return report.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "catalog location (file, fs:name or URL); repeatable")
	return cmd
}
