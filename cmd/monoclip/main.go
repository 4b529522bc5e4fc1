// Package main provides the CLI entry point for monoclip.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/monoclip/internal/config"
	"github.com/five82/monoclip/internal/discovery"
	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/job"
	"github.com/five82/monoclip/internal/logging"
	"github.com/five82/monoclip/internal/probe"
	"github.com/five82/monoclip/internal/processing"
	"github.com/five82/monoclip/internal/reporter"
	"github.com/five82/monoclip/internal/util"
	"github.com/five82/monoclip/internal/watch"
)

const (
	appName    = "monoclip"
	appVersion = "0.1.0"
)

// errJobsFailed makes the process exit non-zero after a batch with failures.
var errJobsFailed = errors.New("one or more jobs failed")

// globalArgs holds the persistent flags shared by every command.
type globalArgs struct {
	ffmpegPath string
	logDir     string
	verbose    bool
	jsonOutput bool
	noLog      bool
}

// batchArgs holds the flags of commands that run jobs.
type batchArgs struct {
	inputPath    string
	outputDir    string
	jobSpecs     []string
	jobFile      string
	dryRun       bool
	cooldownSecs uint64
	minFreeMiB   uint64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if coreerrors.IsValidation(err) {
			fmt.Fprintf(os.Stderr, "Run '%s <command> --help' for usage.\n", appName)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalArgs

	root := &cobra.Command{
		Use:           appName,
		Short:         "Encode grayscale low-resolution clips for small monochrome displays",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.ffmpegPath, "ffmpeg", config.DefaultFFmpegPath, "ffmpeg binary")
	pf.StringVarP(&g.logDir, "log-dir", "l", "", "Log directory (defaults to OUTPUT/logs)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVar(&g.jsonOutput, "json", false, "Emit progress as JSON lines")
	pf.BoolVar(&g.noLog, "no-log", false, "Disable log file creation")

	root.AddCommand(
		newProbeCmd(&g),
		newEncodeCmd(&g),
		newPlanCmd(&g),
		newWatchCmd(&g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
}

func newProbeCmd(g *globalArgs) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Detect a source's resolution and list target resolutions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input == "" {
				return coreerrors.NewValidationError("input path is required (-i/--input)")
			}
			result := probe.Source(cmd.Context(), g.ffmpegPath, input)
			newConsoleReporter(g).SourceProbed(processing.ProbeSummary(result))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Source video file")
	return cmd
}

func addBatchFlags(cmd *cobra.Command, ba *batchArgs) {
	f := cmd.Flags()
	f.StringVarP(&ba.outputDir, "output", "o", "", "Output directory")
	f.StringArrayVarP(&ba.jobSpecs, "job", "j", nil, "Job spec RES[:FPS[:FILTER[:PRESET[:RATE[:off]]]]] (repeatable)")
	f.StringVar(&ba.jobFile, "jobs", "", "YAML job file")
	f.Uint64Var(&ba.cooldownSecs, "cooldown", config.DefaultEncodeCooldownSecs, "Seconds to pause between jobs")
	f.Uint64Var(&ba.minFreeMiB, "min-free", config.DefaultMinFreeSpaceBytes/(1024*1024), "Warn below this many MiB free in the output directory (0 disables)")
}

func newEncodeCmd(g *globalArgs) *cobra.Command {
	var ba batchArgs

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a video file or directory once per job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd.Context(), g, ba)
		},
	}
	cmd.Flags().StringVarP(&ba.inputPath, "input", "i", "", "Source video file or directory")
	cmd.Flags().BoolVar(&ba.dryRun, "dry-run", false, "Print the ffmpeg commands without running them")
	addBatchFlags(cmd, &ba)
	return cmd
}

func newPlanCmd(g *globalArgs) *cobra.Command {
	var ba batchArgs

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the ffmpeg command of every job without encoding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ba.dryRun = true
			return runEncode(cmd.Context(), g, ba)
		},
	}
	cmd.Flags().StringVarP(&ba.inputPath, "input", "i", "", "Source video file or directory")
	addBatchFlags(cmd, &ba)
	return cmd
}

func newWatchCmd(g *globalArgs) *cobra.Command {
	var (
		ba       batchArgs
		debounce uint64
		existing bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Encode every video file that appears in a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), g, ba, debounce, existing)
		},
	}
	cmd.Flags().StringVarP(&ba.inputPath, "dir", "d", "", "Directory to watch")
	cmd.Flags().Uint64Var(&debounce, "debounce", config.DefaultWatchDebounceMillis, "Milliseconds a file must be quiet before encoding")
	cmd.Flags().BoolVar(&existing, "existing", false, "Also encode video files already in the directory")
	addBatchFlags(cmd, &ba)
	return cmd
}

// session is the state shared by a batch-running command.
type session struct {
	cfg    *config.Config
	jobs   []job.Descriptor
	logger *logging.Logger
	rep    reporter.Reporter
}

func (s *session) close() {
	if s.logger != nil {
		_ = s.logger.Close()
	}
}

// newSession resolves paths and jobs, then sets up logging and reporting.
// Command-line paths override those of the job file.
func newSession(g *globalArgs, ba batchArgs) (*session, error) {
	input, output := ba.inputPath, ba.outputDir

	var jobs []job.Descriptor
	if ba.jobFile != "" {
		jf, err := config.LoadJobFile(ba.jobFile)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, jf.Jobs...)
		if input == "" {
			input = jf.Source
		}
		if output == "" {
			output = jf.Output
		}
	}
	for _, spec := range ba.jobSpecs {
		j, err := job.ParseSpec(spec)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	if len(jobs) == 0 {
		return nil, coreerrors.WrapValidationError("use --job or --jobs", config.ErrNoJobs)
	}

	if input == "" {
		return nil, coreerrors.NewValidationError("input path is required (-i/--input)")
	}
	if output == "" {
		return nil, coreerrors.NewValidationError("output directory is required (-o/--output)")
	}

	inputPath, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}
	outputDir, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("invalid output path: %w", err)
	}

	cfg := config.NewConfig(inputPath, outputDir, g.logDir)
	cfg.FFmpegPath = g.ffmpegPath
	cfg.DryRun = ba.dryRun
	cfg.EncodeCooldownSecs = ba.cooldownSecs
	cfg.MinFreeSpaceBytes = ba.minFreeMiB * 1024 * 1024
	cfg.RunID = processing.NewRunID()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.Setup(cfg.GetLogDir(), cfg.RunID, g.verbose, g.noLog)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	if logger != nil {
		logger.Info("Input: %s", cfg.InputPath)
		logger.Info("Output directory: %s", cfg.OutputDir)
		logger.Info("ffmpeg: %s", cfg.FFmpegPath)
		logger.Info("Jobs: %d", len(jobs))
		for i, j := range jobs {
			logger.Debug("  %d. %s", i+1, j)
		}
	}

	return &session{
		cfg:    cfg,
		jobs:   jobs,
		logger: logger,
		rep:    reporter.NewCompositeReporter(newConsoleReporter(g), reporter.NewLogReporter(logger)),
	}, nil
}

func newConsoleReporter(g *globalArgs) reporter.Reporter {
	if g.jsonOutput {
		return reporter.NewJSONReporter()
	}
	return reporter.NewTerminalReporter(g.verbose)
}

func runEncode(ctx context.Context, g *globalArgs, ba batchArgs) error {
	s, err := newSession(g, ba)
	if err != nil {
		return err
	}
	defer s.close()

	info, err := os.Stat(s.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("input path does not exist: %s", s.cfg.InputPath)
	}

	var results []*processing.BatchResult
	if info.IsDir() {
		found, err := discovery.FindVideoFilesWithLogging(s.cfg.InputPath, s.logger)
		if err != nil {
			return fmt.Errorf("failed to discover video files: %w", err)
		}
		results, err = processing.RunSources(ctx, s.cfg, found.Files, s.cfg.OutputDir, s.jobs, s.rep)
		if err != nil {
			return err
		}
	} else {
		result, err := processing.RunJobs(ctx, s.cfg, s.cfg.InputPath, s.cfg.OutputDir, s.jobs, s.rep)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	for _, r := range results {
		if r.Failed > 0 {
			return errJobsFailed
		}
	}
	return nil
}

func runWatch(ctx context.Context, g *globalArgs, ba batchArgs, debounceMillis uint64, existing bool) error {
	s, err := newSession(g, ba)
	if err != nil {
		return err
	}
	defer s.close()

	s.cfg.WatchDebounceMillis = debounceMillis
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !util.DirectoryExists(s.cfg.InputPath) {
		return fmt.Errorf("watch directory does not exist: %s", s.cfg.InputPath)
	}

	handler := func(ctx context.Context, path string) error {
		cfg := *s.cfg
		cfg.InputPath = path
		cfg.RunID = processing.NewRunID()
		s.logger.Info("Batch %s for %s (watch session %s)", cfg.RunID, path, s.logger.RunID())
		_, err := processing.RunJobs(ctx, &cfg, path, cfg.OutputDir, s.jobs, s.rep)
		return err
	}

	w := watch.New(s.cfg.InputPath, handler, watch.Options{
		Debounce:        time.Duration(s.cfg.WatchDebounceMillis) * time.Millisecond,
		ProcessExisting: existing,
		Logger:          s.logger,
	})
	return w.Run(ctx)
}
