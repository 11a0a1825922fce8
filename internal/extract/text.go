package extract

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/Laisky/errors/v2"
	"github.com/dslipak/pdf"
	"github.com/microcosm-cc/bluemonday"
)

func extractText(path string) (string, error) {
	//nolint:gosec // G304: path comes from repository discovery
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

var htmlPolicy = bluemonday.UGCPolicy()

// extractHTML sanitizes the markup before converting it to markdown.
func extractHTML(path string) (string, error) {
	//nolint:gosec // G304: path comes from repository discovery
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	sanitized := htmlPolicy.Sanitize(string(raw))
	markdown, err := md.NewConverter("", true, nil).ConvertString(sanitized)
	if err != nil {
		return "", errors.Wrap(err, "convert html to markdown")
	}
	return markdown, nil
}

// extractPDF reads the plain text layer. The pdf package panics on some
// malformed files, which is reported as an error.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open pdf")
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", errors.Wrap(err, "read pdf text")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", errors.Wrap(err, "read pdf text")
	}
	return buf.String(), nil
}

var printableRun = regexp.MustCompile(`[\x20-\x7E\t]{4,}`)

// extractLegacy pulls printable ASCII runs out of pre-2007 binary Office
// formats. Layout is lost but the text is enough to classify the document.
func extractLegacy(path string) (string, error) {
	//nolint:gosec // G304: path comes from repository discovery
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	runs := printableRun.FindAll(raw, -1)
	lines := make([]string, 0, len(runs))
	for _, run := range runs {
		if line := strings.TrimSpace(string(run)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
