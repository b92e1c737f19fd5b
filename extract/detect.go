package extract

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var extensionFormats = map[string]Format{
	".pdf":      FormatPDF,
	".png":      FormatImage,
	".jpg":      FormatImage,
	".jpeg":     FormatImage,
	".tif":      FormatImage,
	".tiff":     FormatImage,
	".bmp":      FormatImage,
	".gif":      FormatImage,
	".webp":     FormatImage,
	".docx":     FormatDocx,
	".txt":      FormatRawText,
	".text":     FormatRawText,
	".md":       FormatRawText,
	".markdown": FormatRawText,
	".csv":      FormatRawText,
	".json":     FormatRawText,
	".xml":      FormatRawText,
	".html":     FormatRawText,
	".htm":      FormatRawText,
	".log":      FormatRawText,
}

var magicFormats = []struct {
	prefix []byte
	format Format
}{
	{[]byte("%PDF-"), FormatPDF},
	{[]byte("\x89PNG\r\n\x1a\n"), FormatImage},
	{[]byte("\xff\xd8\xff"), FormatImage},
	{[]byte("II*\x00"), FormatImage},
	{[]byte("MM\x00*"), FormatImage},
	{[]byte("BM"), FormatImage},
	{[]byte("GIF8"), FormatImage},
	{[]byte("PK\x03\x04"), FormatDocx},
}

// Detect maps a filename, and optionally a sniff of the first bytes, to
// exactly one format tag. It is a pure function: the caller reads the sniff
// and rewinds the stream, so downstream strategies always start at offset
// 0. Unknown inputs fail with *UnsupportedTypeError naming the extension.
func Detect(filename string, sniff []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}

	for _, m := range magicFormats {
		if bytes.HasPrefix(sniff, m.prefix) {
			return m.format, nil
		}
	}
	if len(sniff) > 0 && looksLikeText(sniff) {
		return FormatRawText, nil
	}

	return "", &UnsupportedTypeError{Kind: ext}
}

// looksLikeText reports whether the sniff is plausibly human-readable
// UTF-8: valid encoding and no NUL or other non-whitespace control bytes.
func looksLikeText(sniff []byte) bool {
	// A multi-byte rune may be cut off at the sniff boundary; trim the
	// trailing partial rune before validating.
	for len(sniff) > 0 && !utf8.Valid(sniff) {
		sniff = sniff[:len(sniff)-1]
	}
	if len(sniff) == 0 {
		return false
	}
	for _, b := range sniff {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			return false
		}
	}
	return true
}
