package stage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fluxcal/internal/calibration"
	"fluxcal/internal/config"
	"fluxcal/internal/fileutil"
	"fluxcal/internal/imageio"
	"fluxcal/internal/logging"
	"fluxcal/internal/manifest"
	"fluxcal/internal/services"
)

// Driver sequences one correction stage over a manifest, one exposure at a
// time (or across a bounded worker pool), recording a per-exposure outcome.
type Driver struct {
	kind     calibration.Kind
	cfg      *config.Config
	resolver *calibration.Resolver
	logger   *slog.Logger
	runID    string
}

// NewDriver constructs a stage driver.
func NewDriver(kind calibration.Kind, cfg *config.Config, resolver *calibration.Resolver, logger *slog.Logger, runID string) *Driver {
	return &Driver{
		kind:     kind,
		cfg:      cfg,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, string(kind)),
		runID:    runID,
	}
}

// Run processes every manifest entry in order. Per-entry failures become
// recorded outcomes and never abort the loop; the only aborts are context
// cancellation and shape-mismatch contract violations. Elapsed time is logged
// even when every entry failed.
func (d *Driver) Run(ctx context.Context, m *manifest.Manifest) ([]Result, error) {
	start := time.Now()
	entries := m.Entries()
	results := make([]Result, len(entries))

	runErr := d.runEntries(ctx, entries, results)

	summary := Summarize(results)
	d.logger.Info("stage finished",
		logging.String(logging.FieldRunID, d.runID),
		logging.Int("total", summary.Total),
		logging.Int("corrected", summary.Corrected),
		logging.Int("skipped", summary.Skipped),
		logging.Int("errors", summary.Errors),
		logging.Duration("elapsed", time.Since(start)))

	return results, runErr
}

func (d *Driver) runEntries(ctx context.Context, entries []manifest.Entry, results []Result) error {
	workers := d.cfg.Stage.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	if workers == 1 {
		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := d.processEntry(ctx, entry, i+1, len(entries))
			results[i] = result
			if err != nil {
				return err
			}
		}
		return nil
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var abortErr error

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			if abortErr == nil {
				abortErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(index int, entry manifest.Entry) {
			defer wg.Done()
			defer func() { <-sem }()
			result, err := d.processEntry(ctx, entry, index+1, len(entries))
			mu.Lock()
			results[index] = result
			if err != nil && abortErr == nil {
				abortErr = err
			}
			mu.Unlock()
		}(i, entry)
	}

	wg.Wait()
	return abortErr
}

// processEntry handles one exposure start to finish. The returned error is
// nil for everything entry-scoped; it is non-nil only for failures that must
// abort the whole run.
func (d *Driver) processEntry(parent context.Context, entry manifest.Entry, index, total int) (Result, error) {
	ctx := services.WithFrame(services.WithStage(services.WithRunID(parent, d.runID), string(d.kind)), entry.Frame)
	logger := logging.WithContext(ctx, d.logger)

	inputPath, inputSuffix, ok := d.locateInput(entry.Frame)
	if !ok {
		logger.Error("input frame not found",
			logging.String("searched", d.inputSearchSummary(entry.Frame)))
		return Result{Frame: entry.Frame, Outcome: OutcomeErrorInputMissing, Detail: "no input file found"}, nil
	}

	data, dataHdr, err := imageio.ReadFrame(inputPath)
	if err != nil {
		logger.Error("input frame unreadable", logging.Error(err))
		return Result{Frame: entry.Frame, Outcome: OutcomeErrorInputMissing, Detail: services.Details(err).Message}, nil
	}

	class, _ := dataHdr.String("OBSTYPE")
	if class == "" {
		class = "unknown"
	}
	logger.Info(fmt.Sprintf("%d/%d %s %s", index, total,
		imageio.FrameName(entry.Frame, d.cfg.Stage.IDWidth, inputSuffix), class))

	outputPath := d.outputPath(entry.Frame)
	if !ShouldProcess(outputPath, d.cfg.Stage.Overwrite) {
		if !fileutil.Exists(outputPath) {
			logger.Warn("gate declined but output is missing", logging.String("output", outputPath))
		}
		logger.Info("output exists, skipping", logging.String("output", outputPath))
		return Result{Frame: entry.Frame, Outcome: OutcomeSkippedOutputExists}, nil
	}

	if d.kind == calibration.KindResponse {
		return d.processResponse(ctx, logger, entry, data, dataHdr, outputPath)
	}
	return d.processFlat(ctx, logger, entry, class, data, dataHdr, inputPath, inputSuffix, outputPath)
}

func (d *Driver) processFlat(ctx context.Context, logger *slog.Logger, entry manifest.Entry, class string, data *imageio.Frame, dataHdr *imageio.Header, inputPath, inputSuffix, outputPath string) (Result, error) {
	if TypeExcluded(class) {
		logger.Info("calibration-frame type, flat not applied", logging.String("class", class))
		return Result{Frame: entry.Frame, Outcome: OutcomeSkippedTypeExcluded, Detail: class}, nil
	}

	varSuffix, maskSuffix := sidecarSuffixes(inputSuffix)
	variance, varHdr := d.loadSidecar(logger, imageio.SwapSuffix(inputPath, inputSuffix, varSuffix), "variance", data)
	mask, maskHdr := d.loadSidecar(logger, imageio.SwapSuffix(inputPath, inputSuffix, maskSuffix), "mask", data)
	if !variance.SameShape(data) || !mask.SameShape(data) {
		return Result{}, services.Wrap(services.ErrShapeMismatch, "flat", "load exposure",
			fmt.Sprintf("variance/mask shape differs from data shape %v", data.Axes), nil)
	}

	cal, err := d.resolver.Resolve(ctx, entry.Calibration)
	if err != nil {
		return d.unresolvedResult(logger, entry, err), nil
	}

	exp := &Exposure{
		Frame:          entry.Frame,
		Class:          class,
		Data:           data,
		DataHeader:     dataHdr,
		Variance:       variance,
		VarianceHeader: varHdr,
		Mask:           mask,
		MaskHeader:     maskHdr,
	}
	if err := ApplyFlat(exp, cal); err != nil {
		return Result{}, err
	}

	width := d.cfg.Stage.IDWidth
	workDir := d.cfg.Paths.WorkDir
	outputs := []struct {
		path  string
		frame *imageio.Frame
		hdr   *imageio.Header
	}{
		{outputPath, exp.Data, exp.DataHeader},
		{imageio.FramePath(workDir, entry.Frame, width, imageio.SuffixFlatVar), exp.Variance, exp.VarianceHeader},
		{imageio.FramePath(workDir, entry.Frame, width, imageio.SuffixFlatMask), exp.Mask, exp.MaskHeader},
	}
	for _, out := range outputs {
		if err := imageio.WriteFrame(out.path, out.frame, out.hdr); err != nil {
			return Result{}, err
		}
	}

	logger.Info("flat-field correction applied",
		logging.String(logging.FieldCalibration, cal.Path),
		logging.String("output", outputPath))
	return Result{Frame: entry.Frame, Outcome: OutcomeCorrected}, nil
}

func (d *Driver) processResponse(ctx context.Context, logger *slog.Logger, entry manifest.Entry, data *imageio.Frame, dataHdr *imageio.Header, outputPath string) (Result, error) {
	cal, err := d.resolver.Resolve(ctx, entry.Calibration)
	if err != nil {
		return d.unresolvedResult(logger, entry, err), nil
	}

	if err := ApplyResponse(data, dataHdr, cal); err != nil {
		return Result{}, err
	}
	if err := imageio.WriteFrame(outputPath, data, dataHdr); err != nil {
		return Result{}, err
	}

	logger.Info("response correction applied",
		logging.String(logging.FieldCalibration, cal.Path),
		logging.String("output", outputPath))
	return Result{Frame: entry.Frame, Outcome: OutcomeCorrected}, nil
}

// unresolvedResult maps a resolver failure onto the recorded outcome. A
// missing association is a warning-level skip; missing parameters and failed
// builds are errors, surfaced distinctly in the detail.
func (d *Driver) unresolvedResult(logger *slog.Logger, entry manifest.Entry, err error) Result {
	detail := services.Details(err).Message
	switch {
	case errors.Is(err, services.ErrNoCalibration):
		logger.Warn("no calibration association, skipping", logging.Error(err))
		return Result{Frame: entry.Frame, Outcome: OutcomeSkippedNoCalibration, Detail: detail}
	case errors.Is(err, services.ErrCalibrationParams):
		logger.Error("calibration parameters missing", logging.Error(err))
		return Result{Frame: entry.Frame, Outcome: OutcomeErrorCalibrationMissing, Detail: "parameters missing: " + detail}
	case errors.Is(err, services.ErrCalibrationBuild):
		logger.Error("calibration build failed", logging.Error(err))
		return Result{Frame: entry.Frame, Outcome: OutcomeErrorCalibrationMissing, Detail: "build failed: " + detail}
	default:
		logger.Error("calibration unavailable", logging.Error(err))
		return Result{Frame: entry.Frame, Outcome: OutcomeErrorCalibrationMissing, Detail: detail}
	}
}

// loadSidecar reads a variance or mask sibling, synthesizing a placeholder
// with a single nonzero element when the file is absent so every corrected
// array keeps a nonzero dynamic range. Absence warns, never fails.
func (d *Driver) loadSidecar(logger *slog.Logger, path, role string, data *imageio.Frame) (*imageio.Frame, *imageio.Header) {
	frame, hdr, err := imageio.ReadFrame(path)
	if err == nil {
		return frame, hdr
	}
	logger.Warn(role+" frame unavailable, synthesizing placeholder",
		logging.String("path", path),
		logging.Error(err))
	frame = imageio.NewFrame(data.Axes...)
	frame.Pixels[0] = 1
	hdr = imageio.NewHeader()
	hdr.Set("SYNTHET", true, "placeholder synthesized by fluxcal")
	return frame, hdr
}

// locateInput tries the partially processed variant first, then the stage-1
// raw variant; the first existing file wins.
func (d *Driver) locateInput(frame int) (string, string, bool) {
	width := d.cfg.Stage.IDWidth
	for _, candidate := range d.inputCandidates() {
		path := imageio.FramePath(candidate.dir, frame, width, candidate.suffix)
		if fileutil.Exists(path) {
			return path, candidate.suffix, true
		}
	}
	return "", "", false
}

type inputCandidate struct {
	dir    string
	suffix string
}

func (d *Driver) inputCandidates() []inputCandidate {
	if d.kind == calibration.KindResponse {
		return []inputCandidate{
			{d.cfg.Paths.WorkDir, imageio.SuffixCombined},
			{d.cfg.Paths.RawDir, imageio.SuffixCombined},
		}
	}
	return []inputCandidate{
		{d.cfg.Paths.WorkDir, imageio.SuffixPartial},
		{d.cfg.Paths.RawDir, imageio.SuffixRaw},
	}
}

func (d *Driver) inputSearchSummary(frame int) string {
	width := d.cfg.Stage.IDWidth
	candidates := d.inputCandidates()
	paths := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		paths = append(paths, imageio.FramePath(candidate.dir, frame, width, candidate.suffix))
	}
	return fmt.Sprintf("%v", paths)
}

func (d *Driver) outputPath(frame int) string {
	suffix := imageio.SuffixFlatData
	if d.kind == calibration.KindResponse {
		suffix = imageio.SuffixResponse
	}
	return imageio.FramePath(d.cfg.Paths.WorkDir, frame, d.cfg.Stage.IDWidth, suffix)
}

func sidecarSuffixes(inputSuffix string) (string, string) {
	if inputSuffix == imageio.SuffixRaw {
		return imageio.SuffixRawVar, imageio.SuffixRawMask
	}
	return imageio.SuffixPartialVar, imageio.SuffixPartialMask
}
