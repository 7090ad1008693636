// Package extract turns uploaded resume documents into plain text.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSeparator joins the text of consecutive pages.
const PageSeparator = "\n"

// DocumentFormatError reports input that could not be read as a PDF.
type DocumentFormatError struct {
	Reason string
	Cause  error
}

func (e *DocumentFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid document: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid document: %s", e.Reason)
}

func (e *DocumentFormatError) Unwrap() error {
	return e.Cause
}

// IsPDF reports whether filename carries a .pdf extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// PDFText returns the plain-text layer of every page, in page order, joined by PageSeparator.
// The parser starts each page's text with a newline, which is dropped; all
// other whitespace is kept.
func PDFText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", &DocumentFormatError{Reason: "document is empty"}
	}

	// The parser panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &DocumentFormatError{Reason: "malformed pdf", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DocumentFormatError{Reason: "failed to read pdf", Cause: err}
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", &DocumentFormatError{Reason: fmt.Sprintf("page %d is missing", i)}
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &DocumentFormatError{Reason: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		pages = append(pages, strings.TrimPrefix(pageText, "\n"))
	}

	return strings.Join(pages, PageSeparator), nil
}
