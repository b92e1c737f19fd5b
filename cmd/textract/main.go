// Command textract extracts text from a document and writes it to stdout.
//
// Usage:
//
//	textract [-ocr auto|force|skip] [-lang eng] [-json] [-pages] [-v] <file>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/wudi/textkit"
	"github.com/wudi/textkit/extract"
	"github.com/wudi/textkit/observability"
)

type options struct {
	path     string
	ocrMode  string
	language string
	asJSON   bool
	perPage  bool
	verbose  bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "textract: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "textract: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: textract [flags] <file>\n")
		flag.PrintDefaults()
	}
	ocrMode := flag.String("ocr", "auto", "OCR mode: auto, force, or skip")
	language := flag.String("lang", "eng", "OCR language code")
	asJSON := flag.Bool("json", false, "Emit the full result as JSON")
	perPage := flag.Bool("pages", false, "Print pages individually with separators")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing input file")
	}
	switch *ocrMode {
	case "auto", "force", "skip":
	default:
		return options{}, fmt.Errorf("invalid ocr mode %q", *ocrMode)
	}
	opts.path = flag.Arg(0)
	opts.ocrMode = *ocrMode
	opts.language = *language
	opts.asJSON = *asJSON
	opts.perPage = *perPage
	opts.verbose = *verbose
	return opts, nil
}

func run(opts options) error {
	level := zerolog.WarnLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	extractor := textkit.New(extract.WithLogger(observability.NewZerolog(zl)))
	result, err := extractor.ExtractFile(context.Background(), opts.path,
		extract.WithOCRMode(extract.OCRMode(opts.ocrMode)),
		extract.WithLanguage(opts.language),
	)
	if err != nil {
		return err
	}

	if opts.asJSON {
		return json.NewEncoder(os.Stdout).Encode(struct {
			FullText string                 `json:"full_text"`
			Pages    []string               `json:"pages"`
			Metadata map[string]interface{} `json:"metadata"`
		}{result.FullText, result.Pages, result.Metadata})
	}
	if opts.perPage {
		for i, page := range result.Pages {
			fmt.Printf("== page %d ==\n%s\n\n", i+1, page)
		}
		return nil
	}
	fmt.Println(result.FullText)
	return nil
}
