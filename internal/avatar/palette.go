package avatar

import "github.com/zarlcorp/zcircle/internal/contact"

// Color is a #RRGGBB hex color.
type Color string

// Palette colors, in index order.
const (
	Teal   Color = "#1AB775"
	Orange Color = "#FBCC5C"
	Purple Color = "#BF97FF"
)

// White is the text color inside every container.
const White Color = "#FFFFFF"

// Palette is the fixed ordered set of avatar background colors.
var Palette = [3]Color{Teal, Orange, Purple}

// AddressColor maps an identifier to a palette entry using the base-16
// value of its first three characters. Identifiers without a parseable
// prefix map to the first entry.
func AddressColor(id string) Color {
	n, ok := parseHexPrefix(prefix(id, 3))
	if !ok {
		return Palette[0]
	}
	return Palette[n%uint64(len(Palette))]
}

// ContactColor maps a contact to a palette entry through the hasher.
func ContactColor(c contact.Contact, h contact.Hasher) Color {
	return AddressColor(h.Hash(c))
}

// prefix returns at most n bytes of s.
func prefix(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// parseHexPrefix parses the longest run of hex digits at the start of s,
// after an optional 0x or 0X. It reports false when no digit is found.
func parseHexPrefix(s string) (uint64, bool) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}

	var n uint64
	digits := 0
	for i := 0; i < len(s); i++ {
		d, ok := hexDigit(s[i])
		if !ok {
			break
		}
		n = n<<4 | uint64(d)
		digits++
	}

	return n, digits > 0
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
