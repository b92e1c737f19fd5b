// Package rawtext reads plain and lightly structured text inputs. Content
// is decoded as UTF-8 with a Latin-1 fallback for legacy files; markdown
// and HTML flavors are reduced to plain text. The result is always a
// single page.
package rawtext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/wudi/textkit/extract"
)

// chunkSize bounds individual reads so very large text files stream
// through a fixed-size buffer instead of one oversized read.
const chunkSize = 1 << 20

// Strategy is the plain/structured text strategy.
type Strategy struct{}

// New returns the raw text strategy.
func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "raw_text" }

func (s *Strategy) Extract(ctx context.Context, src *extract.Source, _ extract.Options) (*extract.Result, error) {
	data, err := readChunks(ctx, src.Reader())
	if err != nil {
		return nil, err
	}

	text, charset := decode(data)
	switch strings.ToLower(filepath.Ext(src.Name())) {
	case ".md", ".markdown":
		text = markdownText(text)
	case ".html", ".htm":
		text = htmlText(text)
	}

	meta := map[string]interface{}{
		extract.MetaMethod:    s.Name(),
		extract.MetaPageCount: 1,
		extract.MetaCharset:   charset,
	}
	return extract.NewResult([]string{text}, meta), nil
}

func readChunks(ctx context.Context, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		n, err := r.Read(chunk)
		buf.Write(chunk[:n])
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read text: %w", err)
		}
	}
}

// decode interprets the content as UTF-8 when valid, falling back to
// Latin-1 otherwise. Decoding happens over the whole buffer, never per
// chunk, so multi-byte runes cannot be split at chunk boundaries.
func decode(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// Latin-1 decoding cannot actually fail; keep the raw bytes if it
		// somehow does.
		return string(data), "binary"
	}
	return string(out), "latin-1"
}
