package fetch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidIdentifier reports an identifier that cannot be safely used as a
// file name or URL path segment.
var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// NormalizeIdentifier trims and NFKC-normalizes raw and checks that the
// result only contains ASCII letters, digits, '_' and '-'. Compatibility
// forms such as fullwidth letters and digits fold to their ASCII
// equivalents.
func NormalizeIdentifier(raw string) (string, error) {
	id := strings.TrimSpace(norm.NFKC.String(raw))
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if !identifierPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return id, nil
}
