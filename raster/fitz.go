package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer rasterizes documents through MuPDF. It opens the document
// once and renders pages sequentially; page-level parallelism belongs to
// the OCR runner, not here, since MuPDF documents are not safe for
// concurrent page access.
type FitzRenderer struct{}

// NewFitzRenderer returns the MuPDF-backed renderer.
func NewFitzRenderer() *FitzRenderer { return &FitzRenderer{} }

// Render rasterizes every page of the document at the given DPI. A page
// that fails to render or encode is returned with Err set; the rest of the
// document is still processed. Opening an unreadable document is the only
// whole-call failure.
func (r *FitzRenderer) Render(ctx context.Context, path string, dpi int) ([]Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}
	defer doc.Close()

	pages := make([]Page, doc.NumPage())
	for n := range pages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		pages[n] = renderPage(doc, n, dpi)
	}
	return pages, nil
}

func renderPage(doc *fitz.Document, n, dpi int) Page {
	page := Page{Index: n, DPI: dpi}

	img, err := doc.ImageDPI(n, float64(dpi))
	if err != nil {
		page.Err = fmt.Errorf("rasterize page %d: %w", n+1, err)
		return page
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		page.Err = fmt.Errorf("encode page %d: %w", n+1, err)
		return page
	}

	bounds := img.Bounds()
	page.PNG = buf.Bytes()
	page.Width = bounds.Dx()
	page.Height = bounds.Dy()
	return page
}
