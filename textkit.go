// Package textkit extracts text from heterogeneous document inputs (PDF,
// images, Word documents, plain and structured text), choosing
// automatically between fast native extraction and OCR.
//
// The root package only wires the built-in strategies together; the
// orchestration engine lives in the extract package and each format
// backend in its own package. Callers that want a different engine,
// rasterizer, or strategy set can assemble an extract.Extractor
// themselves.
package textkit

import (
	"context"

	"github.com/wudi/textkit/docx"
	"github.com/wudi/textkit/extract"
	"github.com/wudi/textkit/ocr"
	"github.com/wudi/textkit/ocr/tesseract"
	"github.com/wudi/textkit/pdftext"
	"github.com/wudi/textkit/raster"
	"github.com/wudi/textkit/rawtext"
)

// New builds an Extractor with the default strategy set: native PDF text,
// Tesseract-backed OCR over MuPDF rasterization, docx, raw text, and
// whole-image OCR. Registration happens here, once, at construction; the
// resulting registry is read-only afterwards.
func New(opts ...extract.Option) *extract.Extractor {
	engine := tesseract.NewEngine()

	registry := extract.NewRegistry()
	registry.Register(extract.FormatPDF, pdftext.New())
	registry.Register(extract.FormatOCR, ocr.NewStrategy(engine, raster.NewFitzRenderer()))
	registry.Register(extract.FormatImage, ocr.NewImageStrategy(engine))
	registry.Register(extract.FormatDocx, docx.New())
	registry.Register(extract.FormatRawText, rawtext.New())

	return extract.NewExtractor(registry, opts...)
}

// ExtractFile is a convenience wrapper over New().ExtractFile for one-off
// calls.
func ExtractFile(ctx context.Context, path string, opts ...extract.RequestOption) (*extract.Result, error) {
	return New().ExtractFile(ctx, path, opts...)
}
