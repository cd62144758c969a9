package ltlf

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var identifierPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

// reserved names that an LTLf parser reads as constants or operators.
var reserved = map[string]bool{
	"true":  true,
	"false": true,
	"True":  true,
	"False": true,
	"TRUE":  true,
	"FALSE": true,
	"tt":    true,
	"ff":    true,
	"last":  true,
	"end":   true,
	"X":     true,
	"WX":    true,
	"F":     true,
	"G":     true,
	"U":     true,
	"R":     true,
	"W":     true,
	"N":     true,
}

// Normalize turns an activity label into a token-safe atom name.
// Whitespace runs become a single underscore, any other character that
// is not a letter, digit or underscore becomes an underscore, and names
// colliding with reserved words or starting with a digit get a leading
// underscore. The mapping is not reversible.
func Normalize(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return "_"
	}

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
	}

	name := b.String()
	first := []rune(name)[0]
	if unicode.IsDigit(first) || isReserved(name) {
		name = "_" + name
	}
	return name
}

// ValidateIdentifier reports whether name can be used verbatim as an
// atom name. Normalize always produces names that pass.
func ValidateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("identifier %q must start with a letter or underscore, followed by letters, digits, or underscores", name)
	}
	if isReserved(name) {
		return fmt.Errorf("cannot use reserved keyword %q as identifier", name)
	}
	return nil
}

func isReserved(name string) bool {
	return reserved[name]
}
