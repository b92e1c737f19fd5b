// Package extract defines the contracts and orchestration for pulling text
// out of heterogeneous document inputs. A Strategy converts one format
// family's byte stream into a Result; the Registry maps detected format
// tags to strategies; the Extractor ties detection, dispatch, the OCR
// fallback heuristic, and resource lifecycle into a single call.
//
// The package knows nothing about concrete formats. Format backends live in
// their own packages (pdftext, docx, rawtext, ocr) and are wired into a
// Registry at process start.
package extract
