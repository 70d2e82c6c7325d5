package calibration

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"fluxcal/internal/imageio"
	"fluxcal/internal/logging"
	"fluxcal/internal/services"
	"fluxcal/internal/testsupport"
)

type countingBuilder struct {
	inner  Builder
	builds int
}

func (b *countingBuilder) Build(ctx context.Context, req BuildRequest) error {
	b.builds++
	return b.inner.Build(ctx, req)
}

type failingBuilder struct{}

func (failingBuilder) Build(ctx context.Context, req BuildRequest) error {
	return errors.New("combine blew up")
}

type vanishingBuilder struct{}

func (vanishingBuilder) Build(ctx context.Context, req BuildRequest) error {
	return nil
}

func writeRecord(t *testing.T, productPath, content string) {
	t.Helper()
	recordPath := strings.TrimSuffix(productPath, ".fits") + ".toml"
	if err := os.WriteFile(recordPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write record %s: %v", recordPath, err)
	}
}

func TestResolveNoneReference(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(KindFlat, cfg, NewFlatBuilder(cfg, logging.NewNop()), logging.NewNop())

	_, err := resolver.Resolve(context.Background(), None)
	if !errors.Is(err, services.ErrNoCalibration) {
		t.Fatalf("err = %v, want ErrNoCalibration", err)
	}
}

func TestResolveExistingProduct(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	width := cfg.Stage.IDWidth

	productPath := imageio.FramePath(cfg.Paths.CalibDir, 5, width, imageio.SuffixFlatField)
	testsupport.WriteFrame(t, productPath, testsupport.Uniform(1.5, 2, 2))

	counting := &countingBuilder{inner: NewFlatBuilder(cfg, logging.NewNop())}
	resolver := NewResolver(KindFlat, cfg, counting, logging.NewNop())

	resolved, err := resolver.Resolve(context.Background(), Reference(5))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Path != productPath {
		t.Errorf("path = %q, want %q", resolved.Path, productPath)
	}
	if resolved.Frame.Pixels[0] != 1.5 {
		t.Errorf("pixel 0 = %g, want 1.5", resolved.Frame.Pixels[0])
	}
	if counting.builds != 0 {
		t.Errorf("builder ran %d times for an existing product", counting.builds)
	}
}

func TestResolveBuildsFromRecordOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	width := cfg.Stage.IDWidth

	testsupport.WriteFrame(t, imageio.FramePath(cfg.Paths.RawDir, 2, width, imageio.SuffixRaw), testsupport.Uniform(2, 2, 2))
	testsupport.WriteFrame(t, imageio.FramePath(cfg.Paths.RawDir, 3, width, imageio.SuffixRaw), testsupport.Uniform(4, 2, 2))

	productPath := imageio.FramePath(cfg.Paths.CalibDir, 5, width, imageio.SuffixFlatField)
	writeRecord(t, productPath, "inputs = [2, 3]\nmethod = \"mean\"\n")

	counting := &countingBuilder{inner: NewFlatBuilder(cfg, logging.NewNop())}
	resolver := NewResolver(KindFlat, cfg, counting, logging.NewNop())

	first, err := resolver.Resolve(context.Background(), Reference(5))
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Frame.Pixels[0] != 3 {
		t.Errorf("built pixel 0 = %g, want mean 3", first.Frame.Pixels[0])
	}

	second, err := resolver.Resolve(context.Background(), Reference(5))
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.Path != first.Path {
		t.Errorf("paths differ: %q vs %q", second.Path, first.Path)
	}
	if counting.builds != 1 {
		t.Fatalf("builder ran %d times, want exactly 1", counting.builds)
	}
}

func TestResolveMissingRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(KindFlat, cfg, NewFlatBuilder(cfg, logging.NewNop()), logging.NewNop())

	_, err := resolver.Resolve(context.Background(), Reference(5))
	if !errors.Is(err, services.ErrCalibrationParams) {
		t.Fatalf("err = %v, want ErrCalibrationParams", err)
	}
}

func TestResolveCorruptRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	productPath := imageio.FramePath(cfg.Paths.CalibDir, 5, cfg.Stage.IDWidth, imageio.SuffixFlatField)
	writeRecord(t, productPath, "inputs = not toml at all\n")

	resolver := NewResolver(KindFlat, cfg, NewFlatBuilder(cfg, logging.NewNop()), logging.NewNop())
	_, err := resolver.Resolve(context.Background(), Reference(5))
	if !errors.Is(err, services.ErrCalibrationParams) {
		t.Fatalf("err = %v, want ErrCalibrationParams", err)
	}
}

func TestResolveBuildFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	productPath := imageio.FramePath(cfg.Paths.CalibDir, 5, cfg.Stage.IDWidth, imageio.SuffixFlatField)
	writeRecord(t, productPath, "inputs = [2]\n")

	resolver := NewResolver(KindFlat, cfg, failingBuilder{}, logging.NewNop())
	_, err := resolver.Resolve(context.Background(), Reference(5))
	if !errors.Is(err, services.ErrCalibrationBuild) {
		t.Fatalf("err = %v, want ErrCalibrationBuild", err)
	}
}

func TestResolveBuilderLeavesNoProduct(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	productPath := imageio.FramePath(cfg.Paths.CalibDir, 5, cfg.Stage.IDWidth, imageio.SuffixFlatField)
	writeRecord(t, productPath, "inputs = [2]\n")

	resolver := NewResolver(KindFlat, cfg, vanishingBuilder{}, logging.NewNop())
	_, err := resolver.Resolve(context.Background(), Reference(5))
	if !errors.Is(err, services.ErrCalibrationBuild) {
		t.Fatalf("err = %v, want ErrCalibrationBuild", err)
	}
}

func TestResolveResponseFromRawSibling(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	width := cfg.Stage.IDWidth

	source := imageio.NewFrame(2, 2)
	source.Pixels = []float32{2, 2, 2, 2}
	testsupport.WriteFrame(t, imageio.FramePath(cfg.Paths.WorkDir, 9, width, imageio.SuffixCombined), source)

	resolver := NewResolver(KindResponse, cfg, NewResponseBuilder(cfg, logging.NewNop()), logging.NewNop())
	resolved, err := resolver.Resolve(context.Background(), Reference(9))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := imageio.FramePath(cfg.Paths.CalibDir, 9, width, imageio.SuffixRespCurve); resolved.Path != want {
		t.Errorf("path = %q, want %q", resolved.Path, want)
	}
	if resolved.Frame.Pixels[0] != 1 {
		t.Errorf("normalized pixel 0 = %g, want 1", resolved.Frame.Pixels[0])
	}
}

func TestResolveResponseWithoutAnySource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	resolver := NewResolver(KindResponse, cfg, NewResponseBuilder(cfg, logging.NewNop()), logging.NewNop())

	_, err := resolver.Resolve(context.Background(), Reference(9))
	if !errors.Is(err, services.ErrCalibrationParams) {
		t.Fatalf("err = %v, want ErrCalibrationParams", err)
	}
}

func TestKindProductSuffix(t *testing.T) {
	if KindFlat.ProductSuffix() != imageio.SuffixFlatField {
		t.Errorf("flat suffix = %q", KindFlat.ProductSuffix())
	}
	if KindResponse.ProductSuffix() != imageio.SuffixRespCurve {
		t.Errorf("response suffix = %q", KindResponse.ProductSuffix())
	}
}
