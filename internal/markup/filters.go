package markup

import "strings"

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines is a prefilter turning CRLF and CR line endings into LF.
func NormalizeNewlines(s string) (string, bool) {
	if !strings.Contains(s, "\r") {
		return s, false
	}
	return newlineReplacer.Replace(s), true
}

// NewlinesToBreaks is a postfilter adding <br> before every newline.
func NewlinesToBreaks(s string) (string, bool) {
	if !strings.Contains(s, "\n") {
		return s, false
	}
	return strings.ReplaceAll(s, "\n", "<br>\n"), true
}
