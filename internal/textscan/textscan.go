// Package textscan holds the small lexical helpers shared by the
// regex-driven extractors: delimiter matching, line numbers and path
// literal cleanup.
package textscan

import (
	"regexp"
	"strings"
)

var closers = map[byte]byte{
	'(': ')',
	'{': '}',
	'[': ']',
	'<': '>',
}

// FindMatchingDelimiter returns the index of the delimiter that closes the
// one at openIndex, or -1 when text[openIndex] is not an opening delimiter
// or the text ends first. Quoted strings ('...', "...", `...`) and
// comments are skipped, so delimiters inside them do not count.
func FindMatchingDelimiter(text string, openIndex int) int {
	if openIndex < 0 || openIndex >= len(text) {
		return -1
	}
	open := text[openIndex]
	close, ok := closers[open]
	if !ok {
		return -1
	}

	depth := 0
	for i := openIndex; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipString(text, i)
			if end < 0 {
				return -1
			}
			i = end
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return -1
			}
			i += nl
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return -1
			}
			i += end + 3
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipString returns the index of the quote closing the string starting at
// start, honouring backslash escapes, or -1 if unterminated. Single and
// double quoted strings end at a newline.
func skipString(text string, start int) int {
	quote := text[start]
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			return i
		case '\n':
			if quote != '`' {
				return i
			}
		}
	}
	return -1
}

// LineAt returns the 1-based line number of byte offset in text.
func LineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}

// Window returns at most n bytes of text starting at start.
func Window(text string, start, n int) string {
	if start >= len(text) {
		return ""
	}
	end := start + n
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

var (
	multiSlash    = regexp.MustCompile(`/{2,}`)
	interpolation = regexp.MustCompile(`\$\{[^}]*\}`)
	kotlinVar     = regexp.MustCompile(`\$[A-Za-z_]\w*`)
)

// CollapseSlashes replaces runs of slashes with a single slash.
func CollapseSlashes(p string) string {
	return multiSlash.ReplaceAllString(p, "/")
}

// StripInterpolations removes ${...} segments (and $name references when
// kotlin is set) from a string template, keeping the literal text.
func StripInterpolations(s string, kotlin bool) string {
	s = interpolation.ReplaceAllString(s, "")
	if kotlin {
		s = kotlinVar.ReplaceAllString(s, "")
	}
	return s
}

// JoinURLPath joins base and sub into a single path with one leading
// slash and no repeated slashes.
func JoinURLPath(base, sub string) string {
	joined := strings.Trim(base, "/") + "/" + strings.Trim(sub, "/")
	joined = "/" + strings.Trim(CollapseSlashes(joined), "/")
	return joined
}

// Truncate returns s cut to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
