package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textPolicy strips every tag from visitor-submitted text.
var textPolicy = bluemonday.StrictPolicy()

// plainText removes markup and returns unescaped, trimmed text.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
