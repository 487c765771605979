package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes every tag and attribute; catalog text is always plain.
var strictPolicy = bluemonday.StrictPolicy()

// Text strips all markup and surrounding whitespace. bluemonday escapes
// entities on output, so they are unescaped again to keep "50/50 & menthol"
// readable in JSON responses.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// Name sanitizes a single-line label and collapses inner runs of whitespace.
func Name(input string) string {
	return strings.Join(strings.Fields(Text(input)), " ")
}
