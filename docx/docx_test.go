package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/wudi/textkit/extract"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p>
      <w:r><w:t>Split</w:t></w:r>
      <w:r><w:t xml:space="preserve"> across runs</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t></w:r></w:p>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>
  </w:body>
</w:document>`

const corePropsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Quarterly Report</dc:title>
  <dc:creator>A. Writer</dc:creator>
</cp:coreProperties>`

func buildDocx(t *testing.T, files map[string]string) *extract.Source {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	src := extract.NewBytesSource(buf.Bytes(), "letter.docx")
	t.Cleanup(func() { src.Close() })
	return src
}

func TestExtractParagraphs(t *testing.T) {
	src := buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"docProps/core.xml": corePropsXML,
	})

	res, err := New().Extract(context.Background(), src, extract.Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("docx output is a single page, got %d", len(res.Pages))
	}

	lines := strings.Split(res.Pages[0], "\n")
	want := []string{
		"First paragraph",
		"Split across runs",
		"Col A\tCol B",
		"Line one",
		"line two",
	}
	if len(lines) != len(want) {
		t.Fatalf("unexpected lines: %q", lines)
	}
	for i, line := range lines {
		if line != want[i] {
			t.Fatalf("line %d = %q, want %q", i, line, want[i])
		}
	}

	if res.Metadata[extract.MetaMethod] != "docx" {
		t.Fatalf("unexpected method: %v", res.Metadata[extract.MetaMethod])
	}
	if res.Metadata[extract.MetaParagraphCount] != 4 {
		t.Fatalf("unexpected paragraph_count: %v", res.Metadata[extract.MetaParagraphCount])
	}
	if res.Metadata[extract.MetaTitle] != "Quarterly Report" {
		t.Fatalf("title missing: %+v", res.Metadata)
	}
	if res.Metadata[extract.MetaAuthor] != "A. Writer" {
		t.Fatalf("author missing: %+v", res.Metadata)
	}
}

func TestExtractWithoutCoreProperties(t *testing.T) {
	src := buildDocx(t, map[string]string{"word/document.xml": documentXML})

	res, err := New().Extract(context.Background(), src, extract.Options{})
	if err != nil {
		t.Fatalf("missing core.xml must not fail extraction: %v", err)
	}
	if _, ok := res.Metadata[extract.MetaTitle]; ok {
		t.Fatalf("unexpected title: %+v", res.Metadata)
	}
}

func TestExtractMissingDocument(t *testing.T) {
	src := buildDocx(t, map[string]string{"docProps/core.xml": corePropsXML})
	if _, err := New().Extract(context.Background(), src, extract.Options{}); err == nil {
		t.Fatalf("archive without word/document.xml should fail")
	}
}

func TestExtractNotAZip(t *testing.T) {
	src := extract.NewBytesSource([]byte("plain bytes, no archive"), "letter.docx")
	defer src.Close()
	if _, err := New().Extract(context.Background(), src, extract.Options{}); err == nil {
		t.Fatalf("non-zip input should fail")
	}
}
