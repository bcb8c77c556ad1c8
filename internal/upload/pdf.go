package upload

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// PDFInfo describes an uploaded CV. It is informational only: the backend
// decides whether a PDF is usable.
type PDFInfo struct {
	Pages     int
	TextChars int
}

// HasPDFHeader reports whether content starts with the PDF magic bytes.
func HasPDFHeader(content []byte) bool {
	return bytes.HasPrefix(content, pdfMagic)
}

// Inspect opens content as a PDF and counts pages and extractable text.
func Inspect(content []byte) (info *PDFInfo, err error) {
	if !HasPDFHeader(content) {
		return nil, &InspectError{Message: "missing %PDF- header"}
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = &InspectError{Message: "malformed PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &InspectError{Message: "failed to open PDF", Cause: err}
	}

	info = &PDFInfo{Pages: reader.NumPage()}
	for i := 1; i <= info.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		info.TextChars += len(strings.TrimSpace(text))
	}
	return info, nil
}
