package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wudi/textkit/extract"
	"github.com/wudi/textkit/observability"
	"github.com/wudi/textkit/raster"
)

// DefaultDPI is the working resolution pages are rasterized at before
// recognition. It is fixed and independent of any preview rendering.
const DefaultDPI = 300

// Strategy extracts text from paginated documents by rasterizing each page
// and recognizing the page images through the Runner. It is the fallback
// path for scanned PDFs and the primary path under forced OCR.
type Strategy struct {
	engine   Engine
	renderer raster.Renderer
	runner   *Runner
	dpi      int
	logger   observability.Logger
}

// StrategyOption configures a Strategy.
type StrategyOption func(*Strategy)

// WithRenderDPI overrides the working rasterization resolution.
func WithRenderDPI(dpi int) StrategyOption {
	return func(s *Strategy) { s.dpi = dpi }
}

// WithRunner substitutes a pre-configured page runner.
func WithRunner(r *Runner) StrategyOption {
	return func(s *Strategy) { s.runner = r }
}

// WithLogger sets the strategy logger.
func WithLogger(l observability.Logger) StrategyOption {
	return func(s *Strategy) { s.logger = l }
}

// NewStrategy builds the document OCR strategy over an engine and a
// rasterization backend.
func NewStrategy(engine Engine, renderer raster.Renderer, opts ...StrategyOption) *Strategy {
	s := &Strategy{
		engine:   engine,
		renderer: renderer,
		dpi:      DefaultDPI,
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = NewRunner(engine, WithRunnerLogger(s.logger))
	}
	return s
}

func (s *Strategy) Name() string { return "ocr" }

// Extract rasterizes the document and recognizes its pages. Per-page
// failures (rasterization or recognition) leave that page's text empty and
// are annotated under the page_errors metadata key; the call still
// succeeds with the remaining pages. Failing to open or rasterize the
// document at all is an *extract.OCRError.
func (s *Strategy) Extract(ctx context.Context, src *extract.Source, opts extract.Options) (*extract.Result, error) {
	path, err := src.FilePath()
	if err != nil {
		return nil, err
	}

	pages, err := s.renderer.Render(ctx, path, s.dpi)
	if err != nil {
		return nil, &extract.OCRError{Err: err}
	}
	if len(pages) == 0 {
		return nil, &extract.OCRError{Err: errors.New("document produced no pages")}
	}

	texts := make([]string, len(pages))
	pageErrs := make(map[int]string)
	inputs := make([]Input, 0, len(pages))
	for _, p := range pages {
		if p.Err != nil {
			pageErrs[p.Index+1] = p.Err.Error()
			continue
		}
		in := InputFromPage(p)
		if opts.Language != "" {
			in.Languages = []string{opts.Language}
		}
		inputs = append(inputs, in)
	}

	out, err := s.runner.Run(ctx, inputs)
	if err != nil {
		return nil, err
	}
	for _, pt := range out {
		if pt.Err != nil {
			pageErrs[pt.Index+1] = pt.Err.Error()
			continue
		}
		texts[pt.Index] = pt.Text
	}

	meta := map[string]interface{}{
		extract.MetaMethod:    s.Name(),
		extract.MetaPageCount: len(pages),
		extract.MetaLanguage:  opts.Language,
		extract.MetaDPI:       s.dpi,
		extract.MetaEngine:    s.engine.Name(),
	}
	if len(pageErrs) > 0 {
		meta[extract.MetaPageErrors] = pageErrs
		s.logger.Warn("ocr finished with page failures",
			observability.Int(observability.MetricOCRPageErrors, len(pageErrs)),
			observability.Int(observability.MetricPageCount, len(pages)),
		)
	}
	return extract.NewResult(texts, meta), nil
}

// ImageStrategy treats a whole image as a single OCR unit, delegating to
// the same engine as the document strategy without any rasterization.
type ImageStrategy struct {
	engine Engine
}

// NewImageStrategy builds the single-image strategy.
func NewImageStrategy(engine Engine) *ImageStrategy {
	return &ImageStrategy{engine: engine}
}

func (s *ImageStrategy) Name() string { return "image_ocr" }

// Extract recognizes one image. An unreadable image is an ordinary
// extraction failure; an engine failure is an *extract.OCRError, since OCR
// is the sole path for image inputs.
func (s *ImageStrategy) Extract(ctx context.Context, src *extract.Source, opts extract.Options) (*extract.Result, error) {
	data, err := io.ReadAll(src.Reader())
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	in, err := imageInput(data)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if opts.Language != "" {
		in.Languages = []string{opts.Language}
	}

	res, err := s.engine.Recognize(ctx, in)
	if err != nil {
		return nil, &extract.OCRError{Err: err}
	}

	meta := map[string]interface{}{
		extract.MetaMethod:    s.Name(),
		extract.MetaPageCount: 1,
		extract.MetaLanguage:  opts.Language,
		extract.MetaEngine:    s.engine.Name(),
	}
	return extract.NewResult([]string{strings.TrimSpace(res.PlainText)}, meta), nil
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte("\xff\xd8\xff")
)

// imageInput builds the engine input, re-encoding formats Tesseract may
// not accept natively (TIFF variants, BMP, GIF, WebP) as PNG. PNG and JPEG
// payloads pass through untouched.
func imageInput(data []byte) (Input, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return Input{ID: "image", Image: data, Format: ImageFormatPNG}, nil
	case bytes.HasPrefix(data, jpegMagic):
		return Input{ID: "image", Image: data, Format: ImageFormatJPEG}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Input{}, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode png: %w", err)
	}
	return Input{ID: "image", Image: buf.Bytes(), Format: ImageFormatPNG}, nil
}
