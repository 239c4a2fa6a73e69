package segment

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode turns raw file bytes into text. A UTF-16 or UTF-8 byte order mark
// selects the encoding and is removed; otherwise the bytes are read as UTF-8
// with invalid sequences replaced by U+FFFD.
func Decode(b []byte) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
