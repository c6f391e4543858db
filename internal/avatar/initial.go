package avatar

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"github.com/zarlcorp/zcircle/internal/contact"
)

// Placeholder is the initial used when no name yields one.
const Placeholder = "#"

// NameInitial returns the first user-perceived character of name in upper
// case. It reports false for an empty name.
func NameInitial(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(name, -1)
	return strings.Map(unicode.ToUpper, cluster), true
}

// ContactInitial returns the initial of the contact's display name.
func ContactInitial(c contact.Contact) (string, bool) {
	return NameInitial(c.DisplayName)
}

// Initials resolves the single displayed character: the contact's initial,
// then the name's, then Placeholder. Either argument may be nil.
func Initials(c *contact.Contact, name *string) string {
	if c != nil {
		if s, ok := ContactInitial(*c); ok {
			return s
		}
	}
	if name != nil {
		if s, ok := NameInitial(*name); ok {
			return s
		}
	}
	return Placeholder
}
