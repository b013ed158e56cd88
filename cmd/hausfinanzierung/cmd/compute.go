package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sq3/hausfinanzierungs-dashboard/internal/config"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/financing"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/output"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/validation"
	"go.uber.org/zap"
)

func newComputeCommand(root *rootOptions) *cobra.Command {
	var configLocation, outputFormatFlag string

	computeCmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the financing described by a scenario file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(configLocation)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
			}

			logger, err := initializeLogger(conf.Logging, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			// CLI override takes precedence over config
			outputFormat := conf.Output.Format
			if outputFormatFlag != "" {
				outputFormat = outputFormatFlag
			}
			if outputFormat == "" {
				outputFormat = constants.OutputFormatPretty
			}
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				logger.Error(err.Error(), zap.String("op", "cmd.compute"))
				return err
			}

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "cmd.compute"),
				)
			}

			result := financing.NewCombiner(logger).Compute(conf.Financing.Request())
			logger.Debug("financing computed",
				zap.String("op", "cmd.compute"),
				zap.Int("months", result.Totals.TotalMonths),
			)

			return output.Write(cmd.OutOrStdout(), outputFormat, result)
		},
	}

	computeCmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to scenario file")
	computeCmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "type of output override: pretty, csv, json")
	return computeCmd
}
