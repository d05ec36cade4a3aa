package javasrc

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommentMode selects how block comments are located in a Java source.
type CommentMode string

const (
	// CommentModeParity removes every /* ... */ span, wherever it appears.
	CommentModeParity CommentMode = "parity"

	// CommentModeLexical ignores /* sequences inside string, char and text
	// block literals and inside // line comments.
	CommentModeLexical CommentMode = "lexical"
)

// CommentModes lists the supported modes.
var CommentModes = []CommentMode{CommentModeParity, CommentModeLexical}

// ParseCommentMode validates a mode name.
func ParseCommentMode(s string) (CommentMode, error) {
	for _, m := range CommentModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown comment mode: %q", s)
}

// blockCommentPattern matches a block comment together with the whitespace
// around it. The first */ closes the comment; nesting is not recognized.
// Whitespace covers the ASCII controls \v and \x1c-\x1f, NEL and every
// Unicode separator, not only RE2's [\t\n\f\r ].
var blockCommentPattern = regexp.MustCompile(`(?s)[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*/\*.*?\*/[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]*`)

// StripBlockComments removes all block comments from src, including the
// whitespace immediately before and after each one.
func StripBlockComments(src string, mode CommentMode) string {
	if mode == CommentModeLexical {
		return stripLexical(src)
	}
	return blockCommentPattern.ReplaceAllString(src, "")
}

// isSpace reports whether r is matched by the whitespace class of
// blockCommentPattern, so both modes trim the same characters.
func isSpace(r rune) bool {
	switch {
	case r >= '\t' && r <= '\r', r >= 0x1c && r <= 0x1f, r == ' ', r == 0x85:
		return true
	}
	return r > 0x7f && unicode.Is(unicode.Z, r)
}

// stripLexical is a single forward scan over src that tracks literal and line
// comment state.
func stripLexical(src string) string {
	out := make([]byte, 0, len(src))

	n := len(src)
	i := 0
	for i < n {
		c := src[i]
		switch {
		case strings.HasPrefix(src[i:], `"""`):
			end := skipTextBlock(src, i+3)
			out = append(out, src[i:end]...)
			i = end

		case c == '"' || c == '\'':
			end := skipQuoted(src, i+1, c)
			out = append(out, src[i:end]...)
			i = end

		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = n
			} else {
				end += i
			}
			out = append(out, src[i:end]...)
			i = end

		case strings.HasPrefix(src[i:], "/*"):
			closeAt := strings.Index(src[i+2:], "*/")
			if closeAt < 0 {
				// Unterminated comment is kept as is.
				out = append(out, src[i:]...)
				return string(out)
			}
			for len(out) > 0 {
				r, size := utf8.DecodeLastRune(out)
				if !isSpace(r) {
					break
				}
				out = out[:len(out)-size]
			}

			i += 2 + closeAt + 2
			for i < n {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isSpace(r) {
					break
				}
				i += size
			}

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipQuoted returns the index just past the literal that started before
// start and is closed by quote. Literals end at an unescaped quote or at a
// newline, whichever comes first.
func skipQuoted(src string, start int, quote byte) int {
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(src)
}

// skipTextBlock returns the index just past the closing """ of a text block
// whose content starts at start.
func skipTextBlock(src string, start int) int {
	for i := start; i < len(src); i++ {
		if src[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(src[i:], `"""`) {
			return i + 3
		}
	}
	return len(src)
}
