package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// spyStrategy records how the orchestrator drives it.
type spyStrategy struct {
	name       string
	pages      []string
	meta       map[string]interface{}
	err        error
	calls      int
	lastLang   string
	lastOffset int64
}

func (s *spyStrategy) Name() string { return s.name }

func (s *spyStrategy) Extract(_ context.Context, src *Source, opts Options) (*Result, error) {
	s.calls++
	s.lastLang = opts.Language
	s.lastOffset, _ = src.Reader().Seek(0, io.SeekCurrent)
	if s.err != nil {
		return nil, s.err
	}
	meta := make(map[string]interface{}, len(s.meta))
	for k, v := range s.meta {
		meta[k] = v
	}
	return NewResult(append([]string(nil), s.pages...), meta), nil
}

func scannedNative() *spyStrategy {
	return &spyStrategy{
		name:  "pdf_native",
		pages: []string{"", "", ""},
		meta:  map[string]interface{}{MetaMethod: "pdf_native", MetaPageCount: 3},
	}
}

func richNative() *spyStrategy {
	return &spyStrategy{
		name:  "pdf_native",
		pages: []string{strings.Repeat("native text ", 20)},
		meta:  map[string]interface{}{MetaMethod: "pdf_native", MetaPageCount: 1},
	}
}

func ocrSpy() *spyStrategy {
	return &spyStrategy{
		name:  "ocr",
		pages: []string{"one", "two", "three"},
		meta:  map[string]interface{}{MetaMethod: "ocr", MetaPageCount: 3},
	}
}

func newTestExtractor(native, ocr Strategy, opts ...Option) *Extractor {
	reg := NewRegistry()
	if native != nil {
		reg.Register(FormatPDF, native)
	}
	if ocr != nil {
		reg.Register(FormatOCR, ocr)
	}
	return NewExtractor(reg, opts...)
}

var pdfBytes = []byte("%PDF-1.4 fake scanned document body")

func TestAutoFallbackOnScannedPDF(t *testing.T) {
	native, ocr := scannedNative(), ocrSpy()
	e := newTestExtractor(native, ocr)

	res, err := e.ExtractBytes(context.Background(), pdfBytes, "scan.pdf")
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if native.calls != 1 || ocr.calls != 1 {
		t.Fatalf("unexpected call counts: native=%d ocr=%d", native.calls, ocr.calls)
	}
	if len(res.Pages) != 3 {
		t.Fatalf("unexpected page count: %d", len(res.Pages))
	}
	if res.Metadata[MetaFallbackTriggered] != true {
		t.Fatalf("fallback_triggered missing: %+v", res.Metadata)
	}
	if res.Metadata[MetaOriginalMethod] != "pdf_native" {
		t.Fatalf("unexpected original_method: %v", res.Metadata[MetaOriginalMethod])
	}
	if res.Metadata[MetaPrimaryYield] != 0 {
		t.Fatalf("unexpected primary_yield: %v", res.Metadata[MetaPrimaryYield])
	}
	if _, ok := res.Metadata[MetaOCRDuration]; !ok {
		t.Fatalf("ocr duration missing: %+v", res.Metadata)
	}
	// The fallback strategy must see the stream rewound to the start.
	if ocr.lastOffset != 0 {
		t.Fatalf("ocr saw stream at offset %d", ocr.lastOffset)
	}
}

func TestAutoNoFallbackOnNativeText(t *testing.T) {
	native, ocr := richNative(), ocrSpy()
	e := newTestExtractor(native, ocr)

	res, err := e.ExtractBytes(context.Background(), pdfBytes, "report.pdf")
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if ocr.calls != 0 {
		t.Fatalf("OCR must not run on substantive native yield")
	}
	if native.lastOffset != 0 {
		t.Fatalf("primary saw stream at offset %d", native.lastOffset)
	}
	if _, ok := res.Metadata[MetaFallbackTriggered]; ok {
		t.Fatalf("unexpected fallback metadata: %+v", res.Metadata)
	}
}

func TestSkipNeverRunsOCR(t *testing.T) {
	native, ocr := scannedNative(), ocrSpy()
	e := newTestExtractor(native, ocr)

	res, err := e.ExtractBytes(context.Background(), pdfBytes, "scan.pdf", WithOCRMode(OCRSkip))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if ocr.calls != 0 {
		t.Fatalf("OCR ran despite skip mode")
	}
	if res.Yield() != 0 {
		t.Fatalf("expected near-empty result, got %q", res.FullText)
	}
	if _, ok := res.Metadata[MetaFallbackTriggered]; ok {
		t.Fatalf("unexpected fallback metadata: %+v", res.Metadata)
	}
}

func TestForceUsesOCRAsPrimary(t *testing.T) {
	native, ocr := richNative(), ocrSpy()
	e := newTestExtractor(native, ocr)

	first, err := e.ExtractBytes(context.Background(), pdfBytes, "report.pdf", WithOCRMode(OCRForce))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if native.calls != 0 || ocr.calls != 1 {
		t.Fatalf("unexpected call counts: native=%d ocr=%d", native.calls, ocr.calls)
	}
	if _, ok := first.Metadata[MetaFallbackTriggered]; ok {
		t.Fatalf("forced OCR is primary, not a fallback: %+v", first.Metadata)
	}

	second, err := e.ExtractBytes(context.Background(), pdfBytes, "report.pdf", WithOCRMode(OCRForce))
	if err != nil {
		t.Fatalf("second ExtractBytes() error = %v", err)
	}
	if first.FullText != second.FullText {
		t.Fatalf("forced extraction not idempotent: %q != %q", first.FullText, second.FullText)
	}
}

func TestLanguagePropagation(t *testing.T) {
	native := richNative()
	e := newTestExtractor(native, nil)
	if _, err := e.ExtractBytes(context.Background(), pdfBytes, "a.pdf", WithLanguage("deu")); err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if native.lastLang != "deu" {
		t.Fatalf("unexpected language: %q", native.lastLang)
	}
}

func TestFallbackThresholdOption(t *testing.T) {
	// Primary yields 5 chars; with a threshold of 3 the yield is
	// sufficient and no fallback runs.
	native := &spyStrategy{
		name:  "pdf_native",
		pages: []string{"five!"},
		meta:  map[string]interface{}{MetaMethod: "pdf_native", MetaPageCount: 1},
	}
	ocr := ocrSpy()
	e := newTestExtractor(native, ocr, WithFallbackThreshold(3))

	if _, err := e.ExtractBytes(context.Background(), pdfBytes, "a.pdf"); err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if ocr.calls != 0 {
		t.Fatalf("fallback ran despite custom threshold")
	}
}

func TestUnsupportedExtension(t *testing.T) {
	e := newTestExtractor(richNative(), nil)
	_, err := e.ExtractBytes(context.Background(), []byte{0x00, 0x01}, "blob.xyz")
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
}

func TestMissingFilenameHint(t *testing.T) {
	e := newTestExtractor(richNative(), nil)
	_, err := e.ExtractBytes(context.Background(), pdfBytes, "")
	var ee *ExtractError
	if !errors.As(err, &ee) || ee.Stage != StageDetect {
		t.Fatalf("expected detect-stage error, got %v", err)
	}
}

func TestSkipOnImageInput(t *testing.T) {
	e := newTestExtractor(nil, nil)
	_, err := e.ExtractBytes(context.Background(), []byte("\x89PNG\r\n\x1a\n..."), "scan.png", WithOCRMode(OCRSkip))
	var ee *ExtractError
	if !errors.As(err, &ee) || ee.Stage != StagePrimary {
		t.Fatalf("expected primary-stage error, got %v", err)
	}
}

func TestPrimaryFailureWrapped(t *testing.T) {
	boom := errors.New("corrupt xref")
	native := &spyStrategy{name: "pdf_native", err: boom}
	e := newTestExtractor(native, nil)

	_, err := e.ExtractBytes(context.Background(), pdfBytes, "bad.pdf")
	var ee *ExtractError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractError, got %v", err)
	}
	if ee.Stage != StagePrimary || ee.Format != FormatPDF {
		t.Fatalf("unexpected stage/format: %s/%s", ee.Stage, ee.Format)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not preserved: %v", err)
	}
}

func TestFallbackFailureWrapped(t *testing.T) {
	ocr := &spyStrategy{name: "ocr", err: errors.New("engine crashed")}
	e := newTestExtractor(scannedNative(), ocr)

	_, err := e.ExtractBytes(context.Background(), pdfBytes, "scan.pdf")
	var ee *ExtractError
	if !errors.As(err, &ee) || ee.Stage != StageFallback {
		t.Fatalf("expected fallback-stage error, got %v", err)
	}
}

func TestReaderInputCleansUpSpool(t *testing.T) {
	before := spoolFiles(t)

	reg := NewRegistry()
	reg.Register(FormatRawText, &spyStrategy{
		name:  "raw_text",
		pages: []string{"content"},
		meta:  map[string]interface{}{MetaMethod: "raw_text", MetaPageCount: 1},
	})
	e := NewExtractor(reg)

	r := opaqueReader{bytes.NewReader([]byte("some notes"))}
	if _, err := e.ExtractReader(context.Background(), r, "notes.txt"); err != nil {
		t.Fatalf("ExtractReader() error = %v", err)
	}

	if after := spoolFiles(t); after != before {
		t.Fatalf("spool files leaked: %d before, %d after", before, after)
	}
}

func spoolFiles(t *testing.T) int {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "textkit-*"))
	if err != nil {
		t.Fatalf("glob temp dir: %v", err)
	}
	return len(matches)
}
