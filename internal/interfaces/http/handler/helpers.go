package handler

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// contentDisposition builds a Content-Disposition header value carrying both
// an ASCII fallback filename and the RFC 5987 encoded UTF-8 original.
// Commas are stripped from the name since some clients split the header on them.
func contentDisposition(dispositionType, filename string) string {
	filename = strings.ReplaceAll(filename, ",", "_")
	fallback := asciiFilename(filename)

	if fallback == filename {
		return fmt.Sprintf(`%s; filename="%s"`, dispositionType, fallback)
	}
	return fmt.Sprintf(`%s; filename="%s"; filename*=utf-8''%s`,
		dispositionType, fallback, url.PathEscape(filename))
}

// asciiFilename decomposes the name and drops everything outside printable
// ASCII, so accented characters degrade to their base letters.
func asciiFilename(filename string) string {
	decomposed := norm.NFKD.String(filename)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r > unicode.MaxASCII || unicode.IsControl(r) || r == '"' || r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseUUIDQuery parses an optional uuid query value; empty means absent
func parseUUIDQuery(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseUUIDList parses a comma separated uuid list query value
func parseUUIDList(value string) ([]uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// errInvalidFilter reports a query parameter that failed to parse
func errInvalidFilter(name string) error {
	return fmt.Errorf("invalid value for %s", name)
}

// splitOrdering separates a DRF-style ordering value into field and direction
func splitOrdering(ordering string) (field string, reverse bool) {
	if strings.HasPrefix(ordering, "-") {
		return strings.TrimPrefix(ordering, "-"), true
	}
	return ordering, false
}
