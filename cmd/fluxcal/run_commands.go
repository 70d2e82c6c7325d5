package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fluxcal/internal/calibration"
	"fluxcal/internal/config"
	"fluxcal/internal/logging"
	"fluxcal/internal/manifest"
	"fluxcal/internal/preflight"
	"fluxcal/internal/runstore"
	"fluxcal/internal/stage"
)

type runFlags struct {
	linkFile  string
	frames    []string
	calibs    []string
	overwrite bool
	workers   int
}

func newFlatCommand(ctx *commandContext) *cobra.Command {
	return newRunCommand(ctx, calibration.KindFlat,
		"flat", "Apply flat-field corrections to the manifest exposures")
}

func newResponseCommand(ctx *commandContext) *cobra.Command {
	return newRunCommand(ctx, calibration.KindResponse,
		"response", "Apply relative-response corrections to the manifest exposures")
}

func newRunCommand(ctx *commandContext, kind calibration.Kind, use, short string) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m, err := buildManifest(flags)
			if err != nil {
				return err
			}
			return runStage(cfg, kind, m, flags)
		},
	}

	cmd.Flags().StringVar(&flags.linkFile, "link-file", "", "Association file with one \"frame calibration\" pair per line")
	cmd.Flags().StringSliceVar(&flags.frames, "frames", nil, "Explicit frame numbers to process")
	cmd.Flags().StringSliceVar(&flags.calibs, "calibs", nil, "Calibration references matching --frames (0 = none)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Regenerate outputs that already exist")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent manifest entries (default from config)")

	return cmd
}

func buildManifest(flags runFlags) (*manifest.Manifest, error) {
	if flags.linkFile != "" {
		if len(flags.frames) > 0 || len(flags.calibs) > 0 {
			return nil, fmt.Errorf("--link-file and --frames/--calibs are mutually exclusive")
		}
		return manifest.LoadLinkFile(flags.linkFile)
	}

	frames, err := parseIntList(flags.frames)
	if err != nil {
		return nil, fmt.Errorf("--frames: %w", err)
	}
	calibs, err := parseIntList(flags.calibs)
	if err != nil {
		return nil, fmt.Errorf("--calibs: %w", err)
	}
	return manifest.FromLists(frames, calibs)
}

func runStage(cfg *config.Config, kind calibration.Kind, m *manifest.Manifest, flags runFlags) error {
	if flags.overwrite {
		cfg.Stage.Overwrite = true
	}
	if flags.workers > 0 {
		cfg.Stage.Workers = flags.workers
	}

	if results := preflight.RunChecks(cfg); !preflight.AllPassed(results) {
		printPreflight(results)
		return fmt.Errorf("preflight checks failed")
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	var builder calibration.Builder
	if kind == calibration.KindResponse {
		builder = calibration.NewResponseBuilder(cfg, logger)
	} else {
		builder = calibration.NewFlatBuilder(cfg, logger)
	}
	resolver := calibration.NewResolver(kind, cfg, builder, logger)

	runID := uuid.NewString()
	driver := stage.NewDriver(kind, cfg, resolver, logger, runID)

	runCtx, stop := signal.NotifyContext(cmdContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now().UTC()
	results, runErr := driver.Run(runCtx, m)
	finished := time.Now().UTC()

	if err := recordRun(cfg, runstore.Run{
		ID:         runID,
		Stage:      string(kind),
		StartedAt:  started,
		FinishedAt: finished,
		Summary:    stage.Summarize(results),
	}, results); err != nil {
		logger.Warn("run history not recorded", logging.Error(err))
	}

	printRunSummary(runID, string(kind), results, finished.Sub(started))
	return runErr
}

func recordRun(cfg *config.Config, run runstore.Run, results []stage.Result) error {
	store, err := runstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordRun(cmdContext(), run, results)
}

func parseIntList(values []string) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, value := range values {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", value)
		}
		out = append(out, n)
	}
	return out, nil
}
