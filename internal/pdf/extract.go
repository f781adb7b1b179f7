// Package pdf extracts plain text from uploaded clinical notes.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrMalformed is returned when the PDF structure cannot be decoded.
var ErrMalformed = errors.New("malformed PDF")

// ExtractText extracts the text of every page of the PDF at path.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()

	return extract(r, 0)
}

// ExtractBytes extracts text from an in-memory PDF.
func ExtractBytes(data []byte) (string, error) {
	return ExtractTextReader(bytes.NewReader(data), int64(len(data)), 0)
}

// ExtractTextReader extracts text from the first maxPages pages of a PDF
// reader, or from all pages when maxPages <= 0. Page texts are joined with
// a newline; pages without extractable text contribute an empty line.
func ExtractTextReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return extract(pdfReader, maxPages)
}

func extract(r *pdf.Reader, maxPages int) (text string, err error) {
	// The decoder panics on some corrupt object streams.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrMalformed, rec)
		}
	}()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	pages := make([]string, 0, maxPages)
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}

	return joinPages(pages), nil
}

func joinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}
