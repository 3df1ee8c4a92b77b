// Package cmd provides the root command and CLI setup for rift.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rift.dev/pkg/rift/internal/adapter"
	"rift.dev/pkg/rift/internal/controller"
	"rift.dev/pkg/rift/internal/domain"
	m "rift.dev/pkg/rift/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var procAdapter adapter.ProcessRunnerAdapter
var scenarioStore adapter.ScenarioStore
var poolStore adapter.PoolStore
var reportStore adapter.ReportStore
var runner domain.VariantRunner
var orchestrator domain.Orchestrator
var classifier domain.Classifier
var aggregator domain.Aggregator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// noCacheFlag disables incremental caching when set.
var noCacheFlag bool

// verboseFlag switches logging to debug level.
var verboseFlag bool

// logFileFlag overrides the log file location.
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	procAdapter = adapter.NewPythonProcessRunnerAdapter()
	scenarioStore = adapter.NewScenarioStore(fsAdapter)
	poolStore = adapter.NewPoolStore(fsAdapter)
	reportStore = adapter.NewReportStore(fsAdapter)
	runner = domain.NewVariantRunner(procAdapter)
	orchestrator = domain.NewOrchestrator(runner)
	classifier = domain.NewClassifier()
	aggregator = domain.NewAggregator()
	workflow = domain.NewWorkflow(
		scenarioStore,
		poolStore,
		reportStore,
		ui,
		orchestrator,
		classifier,
		aggregator,
	)
}

const inputFilesHelp = `Scenario and pool files default to scenario.yaml and pool.yaml in the
current directory and can be overridden positionally:
  - rift run                          use scenario.yaml and pool.yaml
  - rift run merge.yaml               use merge.yaml and pool.yaml
  - rift run merge.yaml suite.yaml    use merge.yaml and suite.yaml`

const rootLongDescription = `Rift detects semantic merge conflicts by running a shared pool of tests
against the four variants of a three-way merge (base, left, right, merge)
and comparing their observable behavior.

` + inputFilesHelp

const runLongDescription = `Run every test in the pool against all four merge variants and write a
conflict report.

` + inputFilesHelp

const poolLongDescription = `List the scenario's variants and the test cases in its pool without
executing anything.

` + inputFilesHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rift",
		Short: "Semantic merge conflict detector",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for conflict reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable cached incremental runs (re-run everything)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file location (default "+defaultLogFilename+")")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// parseInputPaths resolves the scenario and pool files from positional args,
// falling back to configured defaults.
func parseInputPaths(args []string) (m.Path, m.Path) {
	scenarioPath := m.Path(viper.GetString(scenarioConfigKey))
	poolPath := m.Path(viper.GetString(poolConfigKey))

	if len(args) > 0 {
		scenarioPath = m.Path(args[0])
	}

	if len(args) > 1 {
		poolPath = m.Path(args[1])
	}

	return scenarioPath, poolPath
}
