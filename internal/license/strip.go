// Package license removes leading license and copyright comments from source text.
package license

import "strings"

const (
	scanWindowLines    = 20
	leadingWhitespace  = " \t\r\n\f\v"
	lineSeparator      = "\n"
	blockCommentClose  = "*/"
	markupCommentClose = "-->"
)

var (
	licenseKeywords    = []string{"license", "copyright", "mit", "apache", "gpl", "bsd"}
	lineCommentOpeners = []string{"//", "#"}
	commentLikeOpeners = []string{"//", "#", "/*", "*", "<!--"}
)

// StripHeader removes leading license comment blocks. Each pass scans at most the first
// twenty lines; a keyword line closing a block comment ends the header after that line,
// and a keyword line comment removes that line alone. Passes repeat while they remove
// lines, so stacked single-line headers are consumed one after another. Code reached
// before any keyword stops the scan without removal.
func StripHeader(content string) string {
	stripped := content
	for {
		boundary := headerBoundary(stripped)
		if boundary == 0 {
			return stripped
		}
		lines := strings.Split(stripped, lineSeparator)
		stripped = trimLeadingBlankLines(strings.Join(lines[boundary:], lineSeparator))
	}
}

// headerBoundary returns the index of the first line kept, or zero when nothing is removed.
func headerBoundary(content string) int {
	lines := strings.Split(content, lineSeparator)
	limit := len(lines)
	if limit > scanWindowLines {
		limit = scanWindowLines
	}
	for lineIndex := 0; lineIndex < limit; lineIndex++ {
		lowerLine := strings.ToLower(lines[lineIndex])
		if containsAny(lowerLine, licenseKeywords) {
			if strings.Contains(lowerLine, blockCommentClose) || strings.Contains(lowerLine, markupCommentClose) {
				return lineIndex + 1
			}
			if hasAnyPrefix(lowerLine, lineCommentOpeners) {
				return lineIndex + 1
			}
		}
		trimmedLine := strings.TrimSpace(lowerLine)
		if trimmedLine != "" && !hasAnyPrefix(trimmedLine, commentLikeOpeners) {
			return 0
		}
	}
	return 0
}

// trimLeadingBlankLines drops whitespace up to and including the last newline of the leading whitespace run.
func trimLeadingBlankLines(content string) string {
	leadingLength := len(content) - len(strings.TrimLeft(content, leadingWhitespace))
	lastNewline := strings.LastIndex(content[:leadingLength], lineSeparator)
	if lastNewline < 0 {
		return content
	}
	return content[lastNewline+1:]
}

func containsAny(value string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
