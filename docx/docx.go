// Package docx extracts paragraph text from Word documents. A .docx file
// is a zip archive; the body lives in word/document.xml and the title and
// author, when present, in docProps/core.xml. Page boundaries are not
// reliably derivable from the format, so the whole body is one page.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wudi/textkit/extract"
)

// Strategy is the office-document strategy.
type Strategy struct{}

// New returns the docx strategy.
func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "docx" }

// Extract streams word/document.xml through an XML decoder, one paragraph
// per w:p element. The document is never fully materialized as a DOM.
func (s *Strategy) Extract(ctx context.Context, src *extract.Source, _ extract.Options) (*extract.Result, error) {
	zr, err := zip.NewReader(src.ReaderAt(), src.Size())
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	paragraphs, err := documentParagraphs(ctx, zr)
	if err != nil {
		return nil, err
	}

	meta := map[string]interface{}{
		extract.MetaMethod:         s.Name(),
		extract.MetaPageCount:      1,
		extract.MetaParagraphCount: len(paragraphs),
	}
	if props, err := coreProperties(zr); err == nil {
		if props.Title != "" {
			meta[extract.MetaTitle] = props.Title
		}
		if props.Creator != "" {
			meta[extract.MetaAuthor] = props.Creator
		}
	}

	return extract.NewResult([]string{strings.Join(paragraphs, "\n")}, meta), nil
}

func documentParagraphs(ctx context.Context, zr *zip.Reader) ([]string, error) {
	f, err := findFile(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	var paragraphs []string
	var current strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				var run string
				if err := dec.DecodeElement(&run, &t); err != nil {
					return nil, fmt.Errorf("parse text run: %w", err)
				}
				current.WriteString(run)
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
				}
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		}
	}
	return paragraphs, nil
}

type coreProps struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
}

func coreProperties(zr *zip.Reader) (coreProps, error) {
	var props coreProps
	f, err := findFile(zr, "docProps/core.xml")
	if err != nil {
		return props, err
	}
	rc, err := f.Open()
	if err != nil {
		return props, err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(&props); err != nil {
		return coreProps{}, err
	}
	return props, nil
}

func findFile(zr *zip.Reader, name string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, errors.New(name + " missing from archive")
}
