package consumer

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"github.com/gabriel-vasile/mimetype"
)

// maxTextSize caps how much extracted text is kept per document
const maxTextSize = 2 << 20

// supportedMimeTypes are the types the consumer accepts
var supportedMimeTypes = map[string]bool{
	"application/pdf":  true,
	"text/plain":       true,
	"text/markdown":    true,
	"text/csv":         true,
	"text/html":        true,
	"image/png":        true,
	"image/jpeg":       true,
	"image/tiff":       true,
	"image/webp":       true,
	"application/rtf":  true,
	"application/json": true,
}

// ParsedFile is the outcome of sniffing and parsing an uploaded file
type ParsedFile struct {
	MimeType string
	Content  string
	Language string
}

// DetectMimeType sniffs the content type from the file's leading bytes
func DetectMimeType(r io.Reader) (string, error) {
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}
	// strip parameters such as charset
	mime := detected.String()
	if idx := strings.Index(mime, ";"); idx > 0 {
		mime = mime[:idx]
	}
	return mime, nil
}

// Supported reports whether the consumer can handle the mime type
func Supported(mime string) bool {
	return supportedMimeTypes[mime]
}

// ExtractText pulls searchable text out of the file. Only text-based
// types yield content; binary formats are stored without it.
func ExtractText(data []byte, mime string) string {
	if !strings.HasPrefix(mime, "text/") && mime != "application/json" {
		return ""
	}
	text := string(data)
	if len(text) > maxTextSize {
		cut := maxTextSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return strings.TrimSpace(text)
}

// DetectLanguage guesses the dominant language of the text and returns
// its ISO 639-1 code, or an empty string when undetectable.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
