// Package pdfinfo inspects uploaded resumes.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnreadable = errors.New("pdf could not be parsed")

// Info is what the tracker records about a resume
type Info struct {
	PageCount int
	HasText   bool
}

// Inspect parses data as a PDF and counts its pages.
// The parser panics on some malformed inputs, so those are reported as ErrUnreadable.
func Inspect(data []byte) (info Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = Info{}
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	info.PageCount = r.NumPage()
	for i := 1; i <= info.PageCount; i++ {
		page := r.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			info.HasText = true
			break
		}
	}
	return info, nil
}
