// Package cmd provides the root command and CLI setup for autodoc.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"autodoc.dev/pkg/autodoc/internal/adapter"
	"autodoc.dev/pkg/autodoc/internal/controller"
	"autodoc.dev/pkg/autodoc/internal/domain"
	m "autodoc.dev/pkg/autodoc/internal/model"
)

var pythonAdapter adapter.PythonFileAdapter
var fsAdapter adapter.SourceFSAdapter
var gitAdapter *adapter.LocalGitAdapter
var assistantAdapter adapter.AssistantAdapter
var reportStore adapter.ReportStore
var comparator domain.StructureComparator
var resolver domain.CommitRangeResolver
var updater domain.DocstringUpdater
var processor domain.FileProcessor
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	if controller.IsTTY(os.Stdout) {
		ui = controller.NewTUI(os.Stdout)
	} else {
		ui = controller.NewSimpleUI(rootCmd)
	}

	pythonAdapter = adapter.NewTreeSitterPythonAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	gitAdapter = adapter.NewLocalGitAdapter("")
	reportStore = adapter.NewReportStore()
	assistantAdapter = adapter.NewLocalAssistantAdapter(
		viper.GetString(assistantCommandKey),
		time.Duration(viper.GetInt(assistantTimeoutKey))*time.Second,
	)

	comparator = domain.NewStructureComparator(fsAdapter, pythonAdapter)
	resolver = domain.NewCommitRangeResolver(gitAdapter)
	updater = domain.NewDocstringUpdater(fsAdapter, assistantAdapter)
	processor = domain.NewFileProcessor(
		domain.ProcessorConfig{
			MaxRetries: viper.GetInt(runMaxRetriesKey),
			RetryDelay: time.Duration(viper.GetInt(runRetryDelayKey)) * time.Second,
		},
		fsAdapter,
		updater,
		comparator,
	)
	workflow = domain.NewWorkflow(
		repoContextFromEnv(),
		resolver,
		gitAdapter,
		gitAdapter,
		fsAdapter,
		processor,
		reportStore,
		ui,
	)
}

// repoContextFromEnv builds the CI context from the GitHub Actions
// environment. Outside Actions both values are empty and the run is treated
// as a push.
func repoContextFromEnv() domain.RepoContext {
	event := m.EventPush
	if viper.GetString(githubEventNameKey) == string(m.EventPullRequest) {
		event = m.EventPullRequest
	}

	return domain.RepoContext{
		Event:   event,
		BaseRef: viper.GetString(githubBaseRefKey),
	}
}

const rootLongDescription = `Autodoc keeps Python docstrings in sync with the code they describe. It
finds source files changed since the last documentation pass, asks a code
assistant to update their docstrings, and accepts an edit only when the
parse tree proves nothing but docstrings changed.`

const runLongDescription = `Run the docstring pipeline for the given paths (default: files changed
since the last documentation pass).`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autodoc",
		Short: "Docstring automation for Python repositories",
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
			"output directory for processing reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "log file path (default "+defaultLogFilename+")")
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

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
