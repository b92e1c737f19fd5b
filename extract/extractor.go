package extract

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/wudi/textkit/observability"
)

// sniffLen is how many leading bytes Detect may inspect. The stream is
// rewound to offset 0 before any strategy runs.
const sniffLen = 512

// Extractor is the single entry point external callers use. It resolves
// the input format, dispatches the primary strategy, applies the OCR
// fallback policy, and owns the lifecycle of any temporary materialization
// the call needs.
//
// An Extractor is safe for concurrent use; each call owns its Source and
// Result exclusively.
type Extractor struct {
	registry *Registry
	policy   FallbackPolicy
	logger   observability.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger the orchestrator emits through.
func WithLogger(l observability.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithFallbackThreshold overrides the yield boundary of the fallback
// policy.
func WithFallbackThreshold(chars int) Option {
	return func(e *Extractor) { e.policy.Threshold = chars }
}

// NewExtractor builds an orchestrator over the given registry. The registry
// must be fully populated before the first call and is treated as read-only
// afterwards.
func NewExtractor(registry *Registry, opts ...Option) *Extractor {
	e := &Extractor{
		registry: registry,
		logger:   observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RequestOption configures one extraction call.
type RequestOption func(*request)

type request struct {
	mode     OCRMode
	language string
}

// WithOCRMode selects auto, force, or skip for this call.
func WithOCRMode(mode OCRMode) RequestOption {
	return func(r *request) { r.mode = mode }
}

// WithLanguage sets the OCR language code for this call.
func WithLanguage(code string) RequestOption {
	return func(r *request) { r.language = code }
}

func newRequest(opts []RequestOption) request {
	r := request{mode: OCRAuto, language: "eng"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// ExtractFile extracts text from a file on disk, streaming it directly
// from storage.
func (e *Extractor) ExtractFile(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	src, err := NewFileSource(path)
	if err != nil {
		return nil, &ExtractError{Stage: StageDetect, Err: err}
	}
	defer src.Close()
	return e.extract(ctx, src, newRequest(opts))
}

// ExtractBytes extracts text from an in-memory buffer. The filename hint is
// mandatory: without a path there is nothing else to infer the type from.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte, filename string, opts ...RequestOption) (*Result, error) {
	if filename == "" {
		return nil, &ExtractError{Stage: StageDetect, Err: errors.New("filename hint required for in-memory input")}
	}
	src := NewBytesSource(data, filename)
	defer src.Close()
	return e.extract(ctx, src, newRequest(opts))
}

// ExtractReader extracts text from an arbitrary reader. Non-seekable
// readers are spooled to a temporary file owned by the call and removed
// before it returns.
func (e *Extractor) ExtractReader(ctx context.Context, r io.Reader, filename string, opts ...RequestOption) (*Result, error) {
	if filename == "" {
		return nil, &ExtractError{Stage: StageDetect, Err: errors.New("filename hint required for stream input")}
	}
	src, err := NewReaderSource(r, filename)
	if err != nil {
		return nil, &ExtractError{Stage: StageDetect, Err: err}
	}
	defer src.Close()
	return e.extract(ctx, src, newRequest(opts))
}

func (e *Extractor) extract(ctx context.Context, src *Source, req request) (*Result, error) {
	format, err := e.detect(src)
	if err != nil {
		return nil, err
	}
	log := e.logger.With(
		observability.String("file", src.Name()),
		observability.String("format", string(format)),
		observability.String("mode", string(req.mode)),
	)

	primaryFormat := format
	switch {
	case req.mode == OCRForce && format == FormatPDF:
		// Force skips the native pass entirely rather than discarding its
		// output afterwards.
		primaryFormat = FormatOCR
	case req.mode == OCRSkip && format == FormatImage:
		return nil, &ExtractError{
			Stage:  StagePrimary,
			Format: format,
			Err:    errors.New("ocr skipped but images have no native text path"),
		}
	}

	primary, err := e.registry.Strategy(primaryFormat)
	if err != nil {
		return nil, err
	}

	log.Info("extraction started", observability.String("strategy", primary.Name()))
	start := time.Now()
	res, err := primary.Extract(ctx, src, Options{Language: req.language})
	if err != nil {
		log.Error("primary extraction failed", observability.Error("error", err))
		return nil, &ExtractError{Stage: StagePrimary, Format: primaryFormat, Err: err}
	}
	elapsed := time.Since(start)
	res.Metadata[MetaPrimaryDuration] = elapsed.Milliseconds()
	log.Debug("primary extraction done",
		observability.Duration(observability.MetricPrimaryTime, elapsed),
		observability.Int(observability.MetricPageCount, len(res.Pages)),
		observability.Int("yield", res.Yield()),
	)

	if primaryFormat == FormatPDF && e.policy.ShouldRunOCR(res, req.mode) {
		return e.fallback(ctx, src, req, res, log)
	}
	return res, nil
}

// fallback re-reads the input through the OCR strategy after an
// insufficient native yield, stamping audit metadata on the merged result.
func (e *Extractor) fallback(ctx context.Context, src *Source, req request, primary *Result, log observability.Logger) (*Result, error) {
	log.Warn("native yield under threshold, falling back to OCR",
		observability.Int("yield", primary.Yield()),
		observability.Int("pages", primary.PageCount()),
	)

	ocrStrategy, err := e.registry.Strategy(FormatOCR)
	if err != nil {
		return nil, &ExtractError{Stage: StageFallback, Format: FormatOCR, Err: err}
	}
	if err := src.Rewind(); err != nil {
		return nil, &ExtractError{Stage: StageFallback, Format: FormatOCR, Err: err}
	}

	start := time.Now()
	res, err := ocrStrategy.Extract(ctx, src, Options{Language: req.language})
	if err != nil {
		log.Error("fallback extraction failed", observability.Error("error", err))
		return nil, &ExtractError{Stage: StageFallback, Format: FormatOCR, Err: err}
	}
	elapsed := time.Since(start)

	res.Metadata[MetaFallbackTriggered] = true
	res.Metadata[MetaPrimaryYield] = primary.Yield()
	res.Metadata[MetaOCRDuration] = elapsed.Milliseconds()
	if method, ok := primary.Metadata[MetaMethod]; ok {
		res.Metadata[MetaOriginalMethod] = method
	}
	if d, ok := primary.Metadata[MetaPrimaryDuration]; ok {
		res.Metadata[MetaPrimaryDuration] = d
	}
	log.Info("fallback extraction done",
		observability.Duration(observability.MetricFallbackTime, elapsed),
		observability.Int(observability.MetricPageCount, len(res.Pages)),
	)
	return res, nil
}

// detect reads the content sniff, rewinds, and resolves the format tag.
// Detection never consumes the stream: strategies always see offset 0.
func (e *Extractor) detect(src *Source) (Format, error) {
	sniff := make([]byte, sniffLen)
	n, err := io.ReadFull(src.Reader(), sniff)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", &ExtractError{Stage: StageDetect, Err: err}
	}
	if err := src.Rewind(); err != nil {
		return "", &ExtractError{Stage: StageDetect, Err: err}
	}
	format, err := Detect(src.Name(), sniff[:n])
	if err != nil {
		return "", err
	}
	return format, nil
}
