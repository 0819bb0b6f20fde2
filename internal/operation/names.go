package operation

import (
	"unicode"
	"unicode/utf8"
)

// Capitalize upper-cases the first rune of a field name, turning it into an
// operation name.
func Capitalize(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
