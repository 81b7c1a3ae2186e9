// Package cli wires the unipatch command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/unipatch/unipatch/internal/config"
	"github.com/unipatch/unipatch/internal/report"
	"github.com/unipatch/unipatch/pkg/patch"
)

// CLIConfig carries the flag values of the root command.
type CLIConfig struct {
	DryRun     bool
	Verbose    bool
	NoColor    bool
	BaseDir    string
	LogFile    string
	ConfigPath string
}

var cfg = &CLIConfig{}

var rootCmd = &cobra.Command{
	Use:   "unipatch [flags] <patch-file>",
	Short: "Apply unified-diff patches to numbered sibling files",
	Long: `unipatch applies a unified-diff patch file to the files it names,
writing each patched result to a numbered sibling (app.py -> app.001.py)
so originals are never modified. The dominant line ending of each target
file is detected and preserved in its output.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&cfg.DryRun, "dry-run", "n", false, "simulate patching without writing any files")
	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "print per-hunk diagnostics and context warnings")
	rootCmd.Flags().BoolVar(&cfg.NoColor, "no-color", false, "disable colored output")
	rootCmd.Flags().StringVarP(&cfg.BaseDir, "base-dir", "d", "", "directory patch paths are resolved under (default \".\")")
	rootCmd.Flags().StringVar(&cfg.LogFile, "log-file", "", "append JSON diagnostics to this file")
	rootCmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "YAML config file (default $UNIPATCH_CONFIG)")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func run(cmd *cobra.Command, patchPath string) error {
	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine; anything else should surface.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	if settings.NoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		report.DisableColor()
	}

	logger, closeLogger, err := newLogger(settings.Verbose, settings.LogFile)
	if err != nil {
		return err
	}
	defer closeLogger()

	data, err := os.ReadFile(patchPath)
	if err != nil {
		return fmt.Errorf("failed to read patch file: %w", err)
	}

	doc, err := patch.Parse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse patch file: %w", err)
	}
	if len(doc.Files) == 0 {
		fmt.Fprintln(os.Stdout, "No patches found in file.")
		return nil
	}

	opts := patch.FilesystemOptions{BaseDir: settings.BaseDir}
	opts.DryRun = settings.DryRun
	opts.Logger = logger

	outcomes, tally, err := patch.ApplyFilesystem(cmd.Context(), doc, opts)
	if err != nil {
		return err
	}

	writer := report.NewWriter(os.Stdout, settings.Verbose)
	for _, outcome := range outcomes {
		writer.Outcome(outcome, settings.DryRun)
	}
	writer.Summary(tally)

	if tally.Errors > 0 {
		return fmt.Errorf("%d file(s) failed to patch", tally.Errors)
	}
	return nil
}

// resolveSettings layers the configuration sources: explicit flags win,
// then environment variables, then the config file, then defaults.
func resolveSettings(cmd *cobra.Command) (*CLIConfig, error) {
	settings := *cfg

	fileCfg, err := loadFileConfig(settings.ConfigPath)
	if err != nil {
		return nil, err
	}
	if fileCfg != nil {
		if !cmd.Flags().Changed("base-dir") && fileCfg.BaseDir != "" {
			settings.BaseDir = fileCfg.BaseDir
		}
		if !cmd.Flags().Changed("verbose") && fileCfg.Verbose {
			settings.Verbose = true
		}
		if !cmd.Flags().Changed("no-color") && fileCfg.NoColor {
			settings.NoColor = true
		}
		if !cmd.Flags().Changed("log-file") && fileCfg.LogFile != "" {
			settings.LogFile = fileCfg.LogFile
		}
	}

	if !cmd.Flags().Changed("base-dir") {
		if dir := os.Getenv("UNIPATCH_BASE_DIR"); dir != "" {
			settings.BaseDir = dir
		}
	}
	if !cmd.Flags().Changed("log-file") {
		if path := os.Getenv("UNIPATCH_LOG_FILE"); path != "" {
			settings.LogFile = path
		}
	}
	if !cmd.Flags().Changed("verbose") {
		if raw := os.Getenv("UNIPATCH_VERBOSE"); raw != "" {
			verbose, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid UNIPATCH_VERBOSE value %q: %w", raw, err)
			}
			settings.Verbose = verbose
		}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		settings.NoColor = true
	}

	return &settings, nil
}

func loadFileConfig(explicit string) (*config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}
	path, ok := config.DefaultPath()
	if !ok {
		return nil, nil
	}
	return config.Load(path)
}
