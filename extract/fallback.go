package extract

// DefaultFallbackThreshold is the yield, in stripped characters, below
// which a paginated native extraction is treated as a scanned document.
// Calibrated so documents with any substantive native text are never
// re-processed while whitespace-only yields are caught. Known limitation:
// a hybrid document carrying one short native line plus scanned pages sits
// under the threshold's radar and is classified as native.
const DefaultFallbackThreshold = 50

// OCRMode selects how the orchestrator uses OCR for a request.
type OCRMode string

const (
	// OCRAuto runs OCR only when the native yield falls under the policy
	// threshold.
	OCRAuto OCRMode = "auto"
	// OCRForce runs OCR regardless of native yield.
	OCRForce OCRMode = "force"
	// OCRSkip never runs OCR.
	OCRSkip OCRMode = "skip"
)

// FallbackPolicy decides, after the primary strategy has run, whether an
// OCR pass is also required.
type FallbackPolicy struct {
	// Threshold is the yield boundary in characters. Zero means
	// DefaultFallbackThreshold.
	Threshold int
}

// ShouldRunOCR applies the decision table: skip never triggers, force is
// resolved at dispatch before the policy is consulted, and auto triggers
// when the stripped yield is under the threshold for a document that
// actually has pages.
func (p FallbackPolicy) ShouldRunOCR(primary *Result, mode OCRMode) bool {
	switch mode {
	case OCRSkip, OCRForce:
		return false
	}
	threshold := p.Threshold
	if threshold == 0 {
		threshold = DefaultFallbackThreshold
	}
	return primary.Yield() < threshold && primary.PageCount() > 0
}
