package calibration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fluxcal/internal/config"
	"fluxcal/internal/fileutil"
	"fluxcal/internal/imageio"
	"fluxcal/internal/logging"
	"fluxcal/internal/services"
)

// Kind selects which calibration family a resolver serves.
type Kind string

const (
	KindFlat     Kind = "flat"
	KindResponse Kind = "response"
)

// ProductSuffix returns the file-name suffix of this kind's products.
func (k Kind) ProductSuffix() string {
	if k == KindResponse {
		return imageio.SuffixRespCurve
	}
	return imageio.SuffixFlatField
}

// Resolved is a calibration product loaded from disk. The path is embedded
// into corrected exposures' provenance, so two exposures sharing a reference
// always apply the bit-identical on-disk product.
type Resolved struct {
	Frame  *imageio.Frame
	Header *imageio.Header
	Path   string
}

// Resolver maps a reference to its on-disk calibration product, building the
// product on demand when only its parameter record (or, for response
// products, its raw sibling) exists.
type Resolver struct {
	kind      Kind
	calibDir  string
	workDir   string
	idWidth   int
	logLevel  string
	logFormat string
	builder   Builder
	logger    *slog.Logger
	locks     *buildLocks
}

// NewResolver constructs a resolver for one calibration kind.
func NewResolver(kind Kind, cfg *config.Config, builder Builder, logger *slog.Logger) *Resolver {
	return &Resolver{
		kind:      kind,
		calibDir:  cfg.Paths.CalibDir,
		workDir:   cfg.Paths.WorkDir,
		idWidth:   cfg.Stage.IDWidth,
		logLevel:  cfg.Logging.Level,
		logFormat: cfg.Logging.Format,
		builder:   builder,
		logger:    logging.NewComponentLogger(logger, "resolver"),
		locks:     newBuildLocks(),
	}
}

// Resolve returns the calibration product for ref, building it first when it
// is absent but buildable. Unavailability is reported through the services
// sentinels: ErrNoCalibration, ErrCalibrationParams, ErrCalibrationBuild.
func (r *Resolver) Resolve(ctx context.Context, ref Reference) (*Resolved, error) {
	if ref.IsNone() {
		return nil, services.Wrap(services.ErrNoCalibration, string(r.kind), "resolve",
			fmt.Sprintf("no %s associated with this exposure", r.kind), nil)
	}

	productPath := imageio.FramePath(r.calibDir, ref.Frame(), r.idWidth, r.kind.ProductSuffix())
	if !fileutil.Exists(productPath) {
		if err := r.buildProduct(ctx, ref, productPath); err != nil {
			return nil, err
		}
	}

	frame, hdr, err := imageio.ReadFrame(productPath)
	if err != nil {
		return nil, services.Wrap(services.ErrCalibrationBuild, string(r.kind), "load product", productPath, err)
	}
	return &Resolved{Frame: frame, Header: hdr, Path: productPath}, nil
}

// buildProduct performs the single build for a missing product. Presence is
// re-checked under the lock: an earlier entry (or another process) may have
// built it while we waited.
func (r *Resolver) buildProduct(ctx context.Context, ref Reference, productPath string) error {
	release, err := r.locks.acquire(productPath)
	if err != nil {
		return services.Wrap(services.ErrCalibrationBuild, string(r.kind), "lock build", productPath, err)
	}
	defer release()

	if fileutil.Exists(productPath) {
		return nil
	}

	req := BuildRequest{Reference: ref, ProductPath: productPath}
	recordPath := strings.TrimSuffix(productPath, ".fits") + ".toml"
	switch {
	case fileutil.Exists(recordPath):
		rec, err := LoadRecord(recordPath)
		if err != nil {
			return services.Wrap(services.ErrCalibrationParams, string(r.kind), "load parameter record", recordPath, err)
		}
		rec.InheritLogging(r.logLevel, r.logFormat)
		req.Record = rec
	case r.kind == KindResponse:
		// Buildable-from-raw branch: the product is missing but its
		// un-processed source frame may be present under the combined-image
		// suffix.
		rawPath := imageio.FramePath(r.workDir, ref.Frame(), r.idWidth, imageio.SuffixCombined)
		if !fileutil.Exists(rawPath) {
			return services.Wrap(services.ErrCalibrationParams, string(r.kind), "resolve",
				fmt.Sprintf("neither parameter record %s nor raw sibling %s exists", recordPath, rawPath), nil)
		}
		req.RawPath = rawPath
	default:
		return services.Wrap(services.ErrCalibrationParams, string(r.kind), "resolve",
			fmt.Sprintf("parameter record %s does not exist", recordPath), nil)
	}

	r.logger.Info("building calibration product",
		logging.Int("calibration_frame", ref.Frame()),
		logging.String("product", productPath))

	if err := r.builder.Build(ctx, req); err != nil {
		return services.Wrap(services.ErrCalibrationBuild, string(r.kind), "build", productPath, err)
	}
	if !fileutil.Exists(productPath) {
		return services.Wrap(services.ErrCalibrationBuild, string(r.kind), "build",
			fmt.Sprintf("builder finished but product %s is absent", productPath), nil)
	}
	return nil
}
