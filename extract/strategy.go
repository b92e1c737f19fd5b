package extract

import "context"

// Format tags the family a document belongs to. Detection returns one of
// the closed set below; FormatOCR is an internal dispatch tag for the
// fallback path and is never produced by Detect.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatImage   Format = "image"
	FormatDocx    Format = "docx"
	FormatRawText Format = "raw-text"
	FormatOCR     Format = "ocr"
)

// Options carries the per-call parameters a strategy may consult. Language
// is an OCR language code ("eng" style); non-OCR strategies ignore it.
type Options struct {
	Language string
}

// Strategy converts one format family's byte stream into a Result.
//
// The source stream is positioned at offset 0 on entry. Implementations
// must return an error only for irrecoverable parse failures; extracting
// zero text is a valid outcome consumed by the fallback policy, not a
// failure. Implementations are self-contained and know nothing about other
// strategies.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, src *Source, opts Options) (*Result, error)
}
