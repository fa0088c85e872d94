package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"phpc/internal/diag"
	"phpc/internal/diagfmt"
	"phpc/internal/driver"
	"phpc/internal/emit"
	"phpc/internal/observ"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file.php|directory>...",
	Short: "Infer types and bind calls of PHP scripts",
	Long:  `Analyze binds every routine of the given scripts, runs type inference to a fixpoint and reports what the inferred types reveal`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	analyzeCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	analyzeCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	analyzeCmd.Flags().String("snapshot", "", "write inferred types to this msgpack file")
	analyzeCmd.Flags().Bool("watch", false, "re-run when a script changes")
	analyzeCmd.Flags().Bool("reanalyze", false, "run the fixpoint a second time from every routine")
	analyzeCmd.Flags().Bool("strict", false, "fail on constructs that cannot be emitted")
	analyzeCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity")
}

type analyzeOptions struct {
	format         string
	jobs           int
	ui             uiMode
	snapshot       string
	watch          bool
	reanalyze      bool
	strict         bool
	withNotes      bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

// analyzeExtra is the command specific part of the JSON output.
type analyzeExtra struct {
	Counters observ.CounterSnapshot `json:"counters"`
	Calls    callStats              `json:"calls"`
	Timings  *observ.Report         `json:"timings,omitempty"`
}

type callStats struct {
	Sites    int `json:"sites"`
	Resolved int `json:"resolved"`
	Dynamic  int `json:"dynamic"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args[0])
	if err != nil {
		return err
	}
	if err := cfg.apply(cmd.Flags()); err != nil {
		return err
	}
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := applyColorMode(colorMode); err != nil {
		return err
	}

	opts, err := readAnalyzeOptions(cmd)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		// the progress view would fight with the watch log
		opts.ui = uiModeOff
		return watchAndRun(ctx, args, cmd.ErrOrStderr(), func(ctx context.Context) error {
			_, err := analyzePaths(ctx, args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		})
	}

	defer func() {
		if r := recover(); r != nil {
			dumpTraceRing(cmd)
			panic(r)
		}
	}()
	hasErrors, err := analyzePaths(cmd.Context(), args, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		dumpTraceRing(cmd)
		return err
	}
	if hasErrors {
		cleanup()
		_ = stopProfiling()
		os.Exit(1)
	}
	return nil
}

func readAnalyzeOptions(cmd *cobra.Command) (analyzeOptions, error) {
	var opts analyzeOptions
	var err error

	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.format != "pretty" && opts.format != "json" {
		return opts, fmt.Errorf("unknown format: %s", opts.format)
	}
	if opts.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.snapshot, err = cmd.Flags().GetString("snapshot"); err != nil {
		return opts, fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	if opts.watch, err = cmd.Flags().GetBool("watch"); err != nil {
		return opts, fmt.Errorf("failed to get watch flag: %w", err)
	}
	if opts.reanalyze, err = cmd.Flags().GetBool("reanalyze"); err != nil {
		return opts, fmt.Errorf("failed to get reanalyze flag: %w", err)
	}
	if opts.strict, err = cmd.Flags().GetBool("strict"); err != nil {
		return opts, fmt.Errorf("failed to get strict flag: %w", err)
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return opts, nil
}

// analyzePaths runs one full session over paths and prints its diagnostics.
// It reports whether any error was diagnosed.
func analyzePaths(ctx context.Context, paths []string, opts analyzeOptions, out, errOut io.Writer) (bool, error) {
	bag := diag.NewBag(0)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	timer := observ.NewTimer()

	idx := timer.Begin("load")
	fs, ids, err := driver.LoadFiles(paths, rep)
	timer.End(idx, fmt.Sprintf("%d files", len(ids)))
	if err != nil {
		return false, err
	}

	var session *driver.Session
	work := func(ctx context.Context, sink driver.ProgressSink) error {
		comp, err := driver.Compile(ctx, fs, ids, rep, opts.jobs, timer)
		if err != nil {
			return err
		}
		var emitter emit.Emitter = emit.Discard{}
		if opts.strict {
			emitter = emit.NewTextEmitter(comp.Table, true)
		}
		session = driver.NewSession(comp, rep, driver.Options{
			Jobs:      opts.jobs,
			Reanalyze: opts.reanalyze,
			Emitter:   emitter,
			Sink:      sink,
		})
		session.Timer = timer
		return session.Run(ctx)
	}

	if shouldUseTUI(opts.ui, opts.format) && !opts.quiet {
		err = runWithUI(ctx, "phpc analyze", work)
	} else {
		err = work(ctx, nil)
	}
	if err != nil && !isUnsupported(err) {
		return false, err
	}

	bag.Sort()
	switch opts.format {
	case "json":
		output := diagfmt.BuildDiagnosticsOutput(bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     opts.withNotes,
			Indent:           true,
			Color:            !color.NoColor,
			Max:              opts.maxDiagnostics,
		})
		if session != nil {
			extra := analyzeExtra{Counters: session.Counters.Snapshot()}
			st := session.Stats()
			extra.Calls = callStats{Sites: st.CallSites, Resolved: st.Resolved, Dynamic: st.Dynamic}
			if opts.timings {
				report := timer.Report()
				extra.Timings = &report
			}
			output.Extra = extra
		}
		if err := diagfmt.JSON(out, output, diagfmt.JSONOpts{Indent: true, Color: !color.NoColor}); err != nil {
			return false, err
		}
	default:
		if err := diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   true,
			ShowNotes: opts.withNotes,
			Max:       opts.maxDiagnostics,
		}); err != nil {
			return false, err
		}
		if session != nil && !opts.quiet {
			st := session.Stats()
			fmt.Fprintf(errOut, "%d routines, %d/%d call sites bound, %d dynamic\n",
				session.Counters.RoutinesBound.Load(), st.Resolved, st.CallSites, st.Dynamic)
		}
		if opts.timings {
			fmt.Fprint(errOut, timer.Summary())
		}
	}

	if opts.snapshot != "" && session != nil {
		if err := driver.WriteSnapshot(opts.snapshot, session.Snapshot()); err != nil {
			return false, err
		}
	}
	return bag.HasErrors() || err != nil, nil
}

// isUnsupported reports whether err only says that strict emission met a
// construct it cannot lower. The matching diagnostic is already in the bag.
func isUnsupported(err error) bool {
	var unsupported *emit.UnsupportedError
	return errors.As(err, &unsupported)
}
