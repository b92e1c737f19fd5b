package extract

import "strings"

// PageSeparator joins per-page texts into FullText. Every Result produced by
// this module upholds FullText == strings.Join(Pages, PageSeparator).
const PageSeparator = "\n\n"

// Metadata keys shared across strategies. Strategies may add keys of their
// own; these are the ones callers can rely on.
const (
	MetaMethod            = "method"
	MetaPageCount         = "page_count"
	MetaLanguage          = "language"
	MetaFallbackTriggered = "fallback_triggered"
	MetaOriginalMethod    = "original_method"
	MetaPrimaryYield      = "primary_yield"
	MetaParagraphCount    = "paragraph_count"
	MetaPageErrors        = "page_errors"
	MetaUnreadablePages   = "unreadable_pages"
	MetaCharset           = "charset"
	MetaTitle             = "title"
	MetaAuthor            = "author"
	MetaPrimaryDuration   = "primary_duration_ms"
	MetaOCRDuration       = "ocr_duration_ms"
	MetaDPI               = "dpi"
	MetaEngine            = "engine"
)

// Result is the output of one extraction call.
type Result struct {
	// FullText is the concatenation of Pages in document order.
	FullText string
	// Pages holds one entry per page for paginated formats and exactly one
	// entry for non-paginated formats.
	Pages []string
	// Metadata carries the shared keys above plus strategy-specific extras.
	Metadata map[string]interface{}
}

// NewResult builds a Result from per-page texts, deriving FullText so the
// join invariant holds by construction. A nil metadata map is allocated so
// the orchestrator can always stamp fallback and timing keys.
func NewResult(pages []string, metadata map[string]interface{}) *Result {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &Result{
		FullText: strings.Join(pages, PageSeparator),
		Pages:    pages,
		Metadata: metadata,
	}
}

// PageCount reports the page_count metadata entry, or 0 when the format has
// no meaningful pagination recorded.
func (r *Result) PageCount() int {
	if r == nil || r.Metadata == nil {
		return 0
	}
	if n, ok := r.Metadata[MetaPageCount].(int); ok {
		return n
	}
	return 0
}

// Yield is the character length of the stripped full text, the signal the
// fallback policy evaluates.
func (r *Result) Yield() int {
	if r == nil {
		return 0
	}
	return len(strings.TrimSpace(r.FullText))
}
