package usecase

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxStatementDescriptorBytes is the processor's statement descriptor limit.
const MaxStatementDescriptorBytes = 22

var descriptorPolicy = bluemonday.StrictPolicy()

// StatementDescriptor strips markup and the characters the processor rejects,
// then truncates to MaxStatementDescriptorBytes without splitting a rune.
func StatementDescriptor(name string) string {
	text := html.UnescapeString(descriptorPolicy.Sanitize(name))
	text = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '\\', '\'', '"', '*':
			return -1
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, text)
	return TruncateUTF8(strings.TrimSpace(text), MaxStatementDescriptorBytes)
}

// TruncateUTF8 returns the longest prefix of s that is at most limit bytes and
// ends on a rune boundary.
func TruncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}
