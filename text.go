package apidoc

import "regexp"

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits text on LF or CRLF. A trailing newline yields a final
// empty line, so joining the result with "\n" restores LF text exactly.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}
