package security

import (
	"bytes"
	"errors"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrNotPDF        = errors.New("only PDF files are accepted")
	ErrEmptyFile     = errors.New("file is empty")
	ErrSpoofedFile   = errors.New("file content does not match extension")
	ErrFileTooLarge  = errors.New("file exceeds the upload size limit")
	pdfMagic         = []byte("%PDF")
	unsafeNameChars  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatUnderscore = regexp.MustCompile(`_+`)
)

// FileValidationResult contains the result of resume validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	Err          error
}

// IsPDFName reports whether a client supplied file name or media type
// looks like a PDF. This is the cheap pre-check done before reading content.
func IsPDFName(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(contentType), "application/pdf")
}

// ValidatePDF checks a resume upload in three layers:
// extension, %PDF magic bytes, then sniffed MIME type.
func ValidatePDF(filename string, data []byte, maxBytes int64) FileValidationResult {
	result := FileValidationResult{Extension: strings.ToLower(filepath.Ext(filename))}

	if len(data) == 0 {
		result.Err = ErrEmptyFile
		return result
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		result.Err = ErrFileTooLarge
		return result
	}
	if result.Extension != ".pdf" {
		result.Err = ErrNotPDF
		return result
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		result.Err = ErrSpoofedFile
		return result
	}

	result.DetectedMIME = http.DetectContentType(data)
	if result.DetectedMIME != "application/pdf" {
		result.Err = ErrSpoofedFile
		return result
	}

	result.Valid = true
	return result
}

// SanitizeFilename turns an arbitrary name into a flat, ASCII-only object
// name. Path components are dropped. The ".pdf" extension is preserved.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	stem = unsafeNameChars.ReplaceAllString(stem, "_")
	stem = repeatUnderscore.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "._-")
	if stem == "" {
		stem = "resume"
	}
	if len(stem) > 120 {
		stem = stem[:120]
	}
	if ext != ".pdf" {
		ext = ".pdf"
	}
	return stem + ext
}
