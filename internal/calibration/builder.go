package calibration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"fluxcal/internal/config"
	"fluxcal/internal/imageio"
	"fluxcal/internal/logging"
)

// BuildRequest describes one on-demand calibration build.
type BuildRequest struct {
	Reference   Reference
	ProductPath string
	// Record is the parameter recipe; nil for raw-sibling response builds.
	Record *Record
	// RawPath is the un-processed source frame for response builds resolved
	// by suffix substitution instead of a parameter record.
	RawPath string
}

// Builder constructs a missing calibration product. On success the product
// file named by the request exists on disk.
type Builder interface {
	Build(ctx context.Context, req BuildRequest) error
}

// FlatBuilder combines the raw exposures named by a parameter record into a
// flat-field product.
type FlatBuilder struct {
	rawDir  string
	idWidth int
	logger  *slog.Logger
}

// NewFlatBuilder returns a flat-field builder reading inputs from the raw directory.
func NewFlatBuilder(cfg *config.Config, logger *slog.Logger) *FlatBuilder {
	return &FlatBuilder{
		rawDir:  cfg.Paths.RawDir,
		idWidth: cfg.Stage.IDWidth,
		logger:  logging.NewComponentLogger(logger, "flat-builder"),
	}
}

// Build median- or mean-combines the record's inputs and normalizes the
// result to unit mean when requested.
func (b *FlatBuilder) Build(ctx context.Context, req BuildRequest) error {
	if req.Record == nil {
		return fmt.Errorf("flat build for frame %d: parameter record required", req.Reference.Frame())
	}
	if len(req.Record.Inputs) == 0 {
		return fmt.Errorf("flat build for frame %d: parameter record lists no inputs", req.Reference.Frame())
	}

	frames := make([]*imageio.Frame, 0, len(req.Record.Inputs))
	for _, input := range req.Record.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := imageio.FramePath(b.rawDir, input, b.idWidth, imageio.SuffixRaw)
		frame, _, err := imageio.ReadFrame(path)
		if err != nil {
			return fmt.Errorf("flat input frame %d: %w", input, err)
		}
		if len(frames) > 0 && !frame.SameShape(frames[0]) {
			return fmt.Errorf("flat input frame %d: shape differs from first input", input)
		}
		frames = append(frames, frame)
	}

	combined, err := combine(frames, req.Record.Method)
	if err != nil {
		return fmt.Errorf("flat build for frame %d: %w", req.Reference.Frame(), err)
	}
	if req.Record.Normalize {
		if err := normalizeToUnitMean(combined); err != nil {
			return fmt.Errorf("flat build for frame %d: %w", req.Reference.Frame(), err)
		}
	}

	hdr := imageio.NewHeader()
	hdr.Set("OBSTYPE", "FLAT", "frame classification")
	hdr.Set("FRAMENO", req.Reference.Frame(), "originating frame number")
	hdr.Set("NCOMBINE", len(frames), "frames combined")
	hdr.Set("CMBMETH", req.Record.Method, "combine statistic")
	hdr.Set("BUILDAT", time.Now().UTC().Format(time.RFC3339), "product build time")

	if err := imageio.WriteFrame(req.ProductPath, combined, hdr); err != nil {
		return err
	}
	b.logger.Info("flat-field product built",
		logging.Int("inputs", len(frames)),
		logging.String("method", req.Record.Method),
		logging.String("product", req.ProductPath))
	return nil
}

// ResponseBuilder derives a relative-response product from a combined image,
// either the raw sibling located by the resolver or the first input of a
// parameter record.
type ResponseBuilder struct {
	workDir string
	idWidth int
	logger  *slog.Logger
}

// NewResponseBuilder returns a response-curve builder reading combined images
// from the work directory.
func NewResponseBuilder(cfg *config.Config, logger *slog.Logger) *ResponseBuilder {
	return &ResponseBuilder{
		workDir: cfg.Paths.WorkDir,
		idWidth: cfg.Stage.IDWidth,
		logger:  logging.NewComponentLogger(logger, "response-builder"),
	}
}

// Build normalizes the source image to unit mean, yielding the relative
// response of each pixel.
func (b *ResponseBuilder) Build(ctx context.Context, req BuildRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourcePath := req.RawPath
	if sourcePath == "" {
		if req.Record == nil || len(req.Record.Inputs) == 0 {
			return fmt.Errorf("response build for frame %d: no raw sibling and no parameter record inputs", req.Reference.Frame())
		}
		sourcePath = imageio.FramePath(b.workDir, req.Record.Inputs[0], b.idWidth, imageio.SuffixCombined)
	}

	source, sourceHdr, err := imageio.ReadFrame(sourcePath)
	if err != nil {
		return fmt.Errorf("response source: %w", err)
	}
	if err := normalizeToUnitMean(source); err != nil {
		return fmt.Errorf("response build for frame %d: %w", req.Reference.Frame(), err)
	}

	frameNo := req.Reference.Frame()
	if n, ok := sourceHdr.Int("FRAMENO"); ok {
		frameNo = n
	}

	hdr := imageio.NewHeader()
	hdr.Set("OBSTYPE", "RESPONSE", "frame classification")
	hdr.Set("FRAMENO", frameNo, "originating frame number")
	hdr.Set("BUILDAT", time.Now().UTC().Format(time.RFC3339), "product build time")

	if err := imageio.WriteFrame(req.ProductPath, source, hdr); err != nil {
		return err
	}
	b.logger.Info("response product built",
		logging.String("source", sourcePath),
		logging.String("product", req.ProductPath))
	return nil
}

func combine(frames []*imageio.Frame, method string) (*imageio.Frame, error) {
	out := imageio.NewFrame(frames[0].Axes...)
	switch method {
	case "median":
		column := make([]float64, len(frames))
		for i := range out.Pixels {
			for j, frame := range frames {
				column[j] = float64(frame.Pixels[i])
			}
			sort.Float64s(column)
			mid := len(column) / 2
			if len(column)%2 == 0 {
				out.Pixels[i] = float32((column[mid-1] + column[mid]) / 2)
			} else {
				out.Pixels[i] = float32(column[mid])
			}
		}
	case "mean":
		for i := range out.Pixels {
			var sum float64
			for _, frame := range frames {
				sum += float64(frame.Pixels[i])
			}
			out.Pixels[i] = float32(sum / float64(len(frames)))
		}
	default:
		return nil, fmt.Errorf("unsupported combine method %q", method)
	}
	return out, nil
}

func normalizeToUnitMean(frame *imageio.Frame) error {
	var sum float64
	for _, v := range frame.Pixels {
		sum += float64(v)
	}
	mean := sum / float64(len(frame.Pixels))
	if mean <= 0 {
		return fmt.Errorf("cannot normalize: mean %g is not positive", mean)
	}
	for i := range frame.Pixels {
		frame.Pixels[i] = float32(float64(frame.Pixels[i]) / mean)
	}
	return nil
}
