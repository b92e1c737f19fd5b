package extract

import "fmt"

// Stage identifies where in the orchestration an extraction failed.
type Stage string

const (
	StageDetect   Stage = "detect"
	StagePrimary  Stage = "primary"
	StageFallback Stage = "fallback"
)

// UnsupportedTypeError reports an input for which no strategy exists, either
// because detection could not map it to a format tag or because the tag has
// no registered strategy.
type UnsupportedTypeError struct {
	// Kind is the offending extension or format tag.
	Kind string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Kind == "" {
		return "unsupported file type"
	}
	return fmt.Sprintf("unsupported file type: %q", e.Kind)
}

// ExtractError wraps an unrecoverable failure in one orchestration stage.
// Per-page failures never surface this way; they are absorbed into result
// metadata.
type ExtractError struct {
	Stage  Stage
	Format Format
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("%s extraction (%s): %v", e.Stage, e.Format, e.Err)
	}
	return fmt.Sprintf("%s extraction: %v", e.Stage, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// OCRError reports that OCR, as the sole requested path, failed entirely.
// Individual page failures inside a multi-page batch do not raise it.
type OCRError struct {
	Err error
}

func (e *OCRError) Error() string { return fmt.Sprintf("ocr: %v", e.Err) }

func (e *OCRError) Unwrap() error { return e.Err }
