package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

// extractDOCX reads word/document.xml, turning paragraphs into lines.
func extractDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.Wrap(err, "open docx archive")
	}
	defer func() {
		_ = r.Close()
	}()

	f := findEntry(&r.Reader, "word/document.xml")
	if f == nil {
		return "", errors.New("invalid docx: missing word/document.xml")
	}

	var b strings.Builder
	err = walkXML(f, func(tok xml.Token) {
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteString("\n")
			}
		case xml.CharData:
			b.Write(t)
		}
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX collects the a:t text runs of each slide in slide order.
func extractPPTX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.Wrap(err, "open pptx archive")
	}
	defer func() {
		_ = r.Close()
	}()

	type slide struct {
		n int
		f *zip.File
	}
	var slides []slide
	for _, f := range r.File {
		if m := slideName.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, f: f})
		}
	}
	if len(slides) == 0 {
		return "", errors.New("invalid pptx: no slides")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		var runs []string
		inText := false
		err := walkXML(s.f, func(tok xml.Token) {
			switch t := tok.(type) {
			case xml.StartElement:
				inText = t.Name.Local == "t"
			case xml.EndElement:
				inText = false
			case xml.CharData:
				if inText {
					runs = append(runs, string(t))
				}
			}
		})
		if err != nil {
			return "", err
		}
		if len(runs) > 0 {
			parts = append(parts, strings.Join(runs, " "))
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractXLSX returns the shared strings table followed by inline strings
// found in worksheets.
func extractXLSX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", errors.Wrap(err, "open xlsx archive")
	}
	defer func() {
		_ = r.Close()
	}()

	var lines []string
	collect := func(f *zip.File, element string) error {
		depth := 0
		var current strings.Builder
		return walkXML(f, func(tok xml.Token) {
			switch t := tok.(type) {
			case xml.StartElement:
				if t.Name.Local == element {
					depth++
					current.Reset()
				}
			case xml.EndElement:
				if t.Name.Local == element && depth > 0 {
					depth--
					if text := strings.TrimSpace(current.String()); text != "" {
						lines = append(lines, text)
					}
				}
			case xml.CharData:
				if depth > 0 {
					current.Write(t)
				}
			}
		})
	}

	if f := findEntry(&r.Reader, "xl/sharedStrings.xml"); f != nil {
		if err := collect(f, "si"); err != nil {
			return "", err
		}
	}

	var sheets []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/") && strings.HasSuffix(f.Name, ".xml") {
			sheets = append(sheets, f)
		}
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].Name < sheets[j].Name })
	for _, f := range sheets {
		if err := collect(f, "is"); err != nil {
			return "", err
		}
	}
	return strings.Join(lines, "\n"), nil
}

func findEntry(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func walkXML(f *zip.File, visit func(xml.Token)) error {
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "open %s", f.Name)
	}
	defer func() {
		_ = rc.Close()
	}()

	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "parse %s", f.Name)
		}
		visit(tok)
	}
}
