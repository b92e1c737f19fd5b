// Package ocr defines the abstraction layer for plugging OCR engines (for
// example, Tesseract or cloud services) into the extraction pipeline, plus
// the bounded-parallel page runner and the OCR-backed extraction
// strategies. The Engine interface is intentionally small and
// transport-agnostic so providers can be backed by native libraries, local
// binaries, or remote APIs without leaking provider-specific concerns into
// callers.
package ocr
