package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TruncateToCompleteSentences drops a trailing incomplete sentence.
//
// Trailing whitespace is trimmed first. Text already ending in '.', '!' or '?'
// is returned as is. Otherwise the text is split wherever a terminator is
// followed by whitespace, the last unit is dropped and the rest are joined with
// single spaces. Text with no complete sentence yields "".
func TruncateToCompleteSentences(text string) string {
	text = strings.TrimRightFunc(text, isSpace)
	if text == "" {
		return ""
	}

	last, _ := utf8.DecodeLastRuneInString(text)
	if isTerminator(last) {
		return text
	}

	units := splitSentences(text)
	if len(units) <= 1 {
		return ""
	}
	return strings.TrimSpace(strings.Join(units[:len(units)-1], " "))
}

// isSpace extends unicode.IsSpace with the ASCII information separators
// U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences cuts text after each terminator that is followed by at least
// one whitespace rune. The whitespace run itself is discarded.
func splitSentences(text string) []string {
	var units []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminator(r) {
			continue
		}

		j := i
		for j < len(text) {
			ws, wsSize := utf8.DecodeRuneInString(text[j:])
			if !isSpace(ws) {
				break
			}
			j += wsSize
		}
		if j == i {
			continue
		}

		units = append(units, text[start:i])
		start = j
		i = j
	}
	return append(units, text[start:])
}
