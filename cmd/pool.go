package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"rift.dev/pkg/rift/internal/domain"
)

// poolCmd represents the pool command.
var poolCmd = newPoolCmd()

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool [scenario] [pool]",
		Short: "List the scenario variants and test pool",
		Long:  poolLongDescription,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			scenarioPath, poolPath := parseInputPaths(args)

			return workflow.Pool(context.Background(), domain.PoolArgs{
				Scenario: scenarioPath,
				Pool:     poolPath,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(poolCmd)
}
