// Package pdftext extracts embedded text from PDFs natively, without OCR.
// One linear pass over the document yields both per-page text and the
// Info-dictionary metadata; the document is never reopened.
//
// Zero extracted text is not a failure here: a scanned PDF legitimately
// yields empty pages, and that emptiness is the signal the fallback policy
// consumes.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"

	"github.com/wudi/textkit/extract"
)

// Strategy is the native PDF text strategy.
type Strategy struct{}

// New returns the native PDF strategy.
func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "pdf_native" }

// Extract walks the document page by page. A page the library cannot read
// contributes an empty entry and is counted under unreadable_pages; only a
// document that cannot be opened at all is an error.
func (s *Strategy) Extract(ctx context.Context, src *extract.Source, _ extract.Options) (*extract.Result, error) {
	r, err := openReader(src)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := pageCount(r)
	if total <= 0 {
		return nil, errors.New("pdf has no pages")
	}

	pages := make([]string, 0, total)
	unreadable := 0
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		text, ok := pageText(r, i)
		if !ok {
			unreadable++
		}
		pages = append(pages, text)
	}

	meta := map[string]interface{}{
		extract.MetaMethod:    s.Name(),
		extract.MetaPageCount: len(pages),
	}
	if unreadable > 0 {
		meta[extract.MetaUnreadablePages] = unreadable
	}
	// Metadata comes from the reader already in hand, same pass as the
	// page walk.
	if title := infoString(r, "Title"); title != "" {
		meta[extract.MetaTitle] = title
	}
	if author := infoString(r, "Author"); author != "" {
		meta[extract.MetaAuthor] = author
	}
	return extract.NewResult(pages, meta), nil
}

// The pdf library panics on some malformed documents; the recover guards
// below keep a bad object from taking down the whole call.

func openReader(src *extract.Source) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parse pdf: %v", p)
		}
	}()
	return pdf.NewReader(src.ReaderAt(), src.Size())
}

func pageCount(r *pdf.Reader) (n int) {
	defer func() { _ = recover() }()
	return r.NumPage()
}

func pageText(r *pdf.Reader, i int) (text string, ok bool) {
	ok = true
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return "", true
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return t, true
}

func infoString(r *pdf.Reader, key string) (val string) {
	defer func() { _ = recover() }()
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	v := info.Key(key)
	if v.Kind() != pdf.String {
		return ""
	}
	return decodeInfoString(v.RawString())
}

// decodeInfoString handles the two encodings PDF allows for Info strings:
// UTF-16 with a byte-order mark, and byte strings passed through as-is.
func decodeInfoString(s string) string {
	if len(s) >= 2 && (s[:2] == "\xfe\xff" || s[:2] == "\xff\xfe") {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes([]byte(s))
		if err != nil {
			return s
		}
		return string(bytes.TrimPrefix(out, []byte("\xef\xbb\xbf")))
	}
	return s
}
