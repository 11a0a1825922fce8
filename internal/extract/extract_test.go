package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func writeZip(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for entry, body := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", []byte("Invoice 2024"))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Invoice 2024", text)
}

func TestExtractReplacesInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", []byte("caf\xe9 menu"))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "caf� menu", text)
}

func TestExtractHTML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", []byte(`<html><body><h1>Quarterly Report</h1><script>alert(1)</script><p>Revenue grew.</p></body></html>`))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Contains(t, text, "Quarterly Report")
	require.Contains(t, text, "Revenue grew.")
	require.NotContains(t, text, "alert")
}

func TestExtractDOCX(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "letter.docx", map[string]string{
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="w"><w:body>` +
			`<w:p><w:r><w:t>Dear Sir</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Amount</w:t><w:tab/><w:t>100</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Dear Sir\nAmount\t100\n", text)
}

func TestExtractPPTXInSlideOrder(t *testing.T) {
	dir := t.TempDir()
	slide := func(text string) string {
		return `<p:sld xmlns:p="p" xmlns:a="a"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` +
			text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	path := writeZip(t, dir, "deck.pptx", map[string]string{
		"ppt/slides/slide10.xml": slide("Ten"),
		"ppt/slides/slide2.xml":  slide("Two"),
		"ppt/slides/slide1.xml":  slide("One"),
	})

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "One\n\nTwo\n\nTen", text)
}

func TestExtractXLSX(t *testing.T) {
	dir := t.TempDir()
	path := writeZip(t, dir, "book.xlsx", map[string]string{
		"xl/sharedStrings.xml":     `<sst><si><t>Customer</t></si><si><r><t>Acme</t></r><r><t> Corp</t></r></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData><row><c t="inlineStr"><is><t>Total</t></is></c></row></sheetData></worksheet>`,
	})

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Customer\nAcme Corp\nTotal", text)
}

func TestExtractLegacy(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.doc", []byte("\x00\x01\xd0\xcfMeeting minutes\x00\x02ab\x00Budget approved\x7f"))

	text, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "Meeting minutes\nBudget approved", text)
}

func TestExtractFailures(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	registry := New(WithMaxFileSize(16))

	_, err := registry.Extract(ctx, writeFile(t, dir, "image.png", []byte("png")))
	require.ErrorIs(t, err, ErrUnsupported)

	_, err = registry.Extract(ctx, writeFile(t, dir, "blank.txt", []byte(" \n\t ")))
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = registry.Extract(ctx, writeFile(t, dir, "big.txt", []byte(strings.Repeat("x", 17))))
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = registry.Extract(ctx, writeFile(t, dir, "broken.docx", []byte("not a zip")))
	require.Error(t, err)

	_, err = registry.Extract(ctx, writeFile(t, dir, "broken.pdf", []byte("not a pdf")))
	require.Error(t, err)

	_, err = registry.Extract(ctx, filepath.Join(dir, "missing.txt"))
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = registry.Extract(cancelled, writeFile(t, dir, "ok.txt", []byte("hello")))
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithFormatOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", []byte("%PDF-1.4"))
	registry := New(WithFormat(func(string) (string, error) { return "ocr text", nil }, ".PDF"))

	require.True(t, registry.Supports("a.PDF"))
	require.False(t, registry.Supports("a.png"))

	text, err := registry.Extract(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "ocr text", text)
}
