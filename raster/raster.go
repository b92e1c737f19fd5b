// Package raster converts document pages into images suitable for OCR. The
// Renderer interface keeps the rasterization backend opaque to callers;
// the default implementation is backed by MuPDF via go-fitz.
package raster

import "context"

// Page is one rasterized document page.
type Page struct {
	// Index is the zero-based page index within the document.
	Index int
	// PNG holds the encoded page image. Nil when rasterization of this
	// page failed; Err then carries the cause.
	PNG []byte
	// Width and Height are the pixel dimensions of the rendered page.
	Width  int
	Height int
	// DPI is the resolution the page was rendered at.
	DPI int
	// Err records a per-page rasterization failure. A failed page never
	// aborts the document; callers annotate and continue.
	Err error
}

// Renderer produces an ordered sequence of page images for a document at
// the given working resolution. Implementations own their resource and
// thread management. The returned slice has one entry per document page,
// in page order, with per-page failures recorded on Page.Err.
type Renderer interface {
	Render(ctx context.Context, path string, dpi int) ([]Page, error)
}
