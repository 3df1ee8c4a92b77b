package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rift.dev/pkg/rift/internal/domain"
	m "rift.dev/pkg/rift/internal/model"
)

var runParallelFlag int
var runVariantParallelFlag int
var runShardFlag string
var runTimeoutFlag int
var runRetriesFlag int
var runStrictMessagesFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario] [pool]",
		Short: "Run conflict detection",
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			shardIndex, totalShards := parseShardFlag(runShardFlag)
			scenarioPath, poolPath := parseInputPaths(args)

			return workflow.Run(ctx, domain.RunArgs{
				Scenario:        scenarioPath,
				Pool:            poolPath,
				Reports:         m.Path(viper.GetString(outputFlagName)),
				Threads:         viper.GetInt(runParallelConfigKey),
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
				UseCache:        !viper.GetBool(noCacheFlagName),
				StrictMessages:  viper.GetBool(strictMessagesConfigKey),
				Exec: domain.ExecConfig{
					Timeout:         time.Duration(viper.GetInt64(variantTimeoutKey)) * time.Second,
					Retries:         viper.GetInt(retriesConfigKey),
					VariantParallel: viper.GetInt(variantParallelKey),
				},
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel workers for trial execution")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)
	cmd.Flags().IntVar(&runVariantParallelFlag, variantParallelFlag, viper.GetInt(variantParallelKey), "number of variants of one trial executed concurrently")
	bindFlagToConfig(cmd.Flags().Lookup(variantParallelFlag), variantParallelKey)
	cmd.Flags().IntVar(&runTimeoutFlag, timeoutFlagName, int(viper.GetInt64(variantTimeoutKey)), "per-variant execution timeout in seconds")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), variantTimeoutKey)
	cmd.Flags().IntVar(&runRetriesFlag, retriesFlagName, viper.GetInt(retriesConfigKey), "extra executions used to confirm an unstable outcome")
	bindFlagToConfig(cmd.Flags().Lookup(retriesFlagName), retriesConfigKey)
	cmd.Flags().BoolVar(&runStrictMessagesFlag, strictMessagesFlagName, viper.GetBool(strictMessagesConfigKey), "compare exception messages, not just exception types")
	bindFlagToConfig(cmd.Flags().Lookup(strictMessagesFlagName), strictMessagesConfigKey)
	cmd.Flags().StringVarP(&runShardFlag, "shard", "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
