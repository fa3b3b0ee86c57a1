package region

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and converts the name to NFC so
// that visually identical names are stored byte-identically.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
