package util

import (
	"golang.org/x/text/unicode/norm"
)

// FixUnicode brings a string into NFC form. passwords go through this
// before key derivation, so the same characters typed on different
// platforms always derive the same keys.
func FixUnicode(in string) string {
	return norm.NFC.String(in)
}
