// Package filter decides which repository files are excluded from concatenation.
package filter

import (
	"path"
	"regexp"
	"strings"

	"github.com/temirov/repoflat/internal/types"
)

// LargeFileThreshold is the largest size in bytes kept when large files are skipped.
const LargeFileThreshold int64 = 1024 * 1024

const caseInsensitiveFlag = "(?i)"

var binaryExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".ico": {}, ".svg": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".gz": {}, ".exe": {}, ".dll": {},
	".so": {}, ".dylib": {}, ".bin": {}, ".dat": {}, ".db": {}, ".sqlite": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {}, ".wav": {}, ".flac": {},
	".ttf": {}, ".otf": {}, ".woff": {}, ".woff2": {}, ".eot": {},
}

type compiledPattern struct {
	raw        string
	expression *regexp.Regexp
}

// Filter evaluates FilterOptions against file entries with patterns compiled once.
type Filter struct {
	options  types.FilterOptions
	patterns []compiledPattern
}

// New compiles the skip patterns of options. Blank patterns are ignored.
func New(options types.FilterOptions) Filter {
	compiled := make([]compiledPattern, 0, len(options.SkipPatterns))
	for _, rawPattern := range options.SkipPatterns {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if trimmedPattern == "" {
			continue
		}
		compiled = append(compiled, compiledPattern{raw: trimmedPattern, expression: compileGlob(trimmedPattern)})
	}
	return Filter{options: options, patterns: compiled}
}

// ShouldSkip reports whether entry is excluded under options.
func ShouldSkip(entry types.FileEntry, options types.FilterOptions) bool {
	return New(options).ShouldSkip(entry)
}

// ShouldSkip reports whether entry is excluded by size, binary extension, or a skip pattern.
// Patterns are tested against the lower-cased full path and its final segment.
func (filter Filter) ShouldSkip(entry types.FileEntry) bool {
	if filter.options.SkipLargeFiles && entry.Size > LargeFileThreshold {
		return true
	}
	if filter.options.SkipBinaryFiles && IsBinaryPath(entry.Path) {
		return true
	}
	if len(filter.patterns) == 0 {
		return false
	}
	lowerPath := strings.ToLower(entry.Path)
	baseName := path.Base(lowerPath)
	for _, pattern := range filter.patterns {
		if pattern.matches(lowerPath) || pattern.matches(baseName) {
			return true
		}
	}
	return false
}

// Partition splits entries into kept entries, preserving order, and the number skipped.
func (filter Filter) Partition(entries []types.FileEntry) ([]types.FileEntry, int) {
	kept := make([]types.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.ShouldSkip(entry) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept, len(entries) - len(kept)
}

// MatchesGlob reports whether candidate matches pattern as an anchored, case-insensitive glob
// where * matches any run and ? any single character. A failed glob falls back to
// case-insensitive substring containment of the raw pattern.
func MatchesGlob(candidate string, pattern string) bool {
	return compiledPattern{raw: pattern, expression: compileGlob(pattern)}.matches(candidate)
}

func (pattern compiledPattern) matches(candidate string) bool {
	if pattern.expression != nil && pattern.expression.MatchString(candidate) {
		return true
	}
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(pattern.raw))
}

// compileGlob returns nil when the translated pattern is not a valid expression;
// such patterns still match through substring containment.
func compileGlob(pattern string) *regexp.Regexp {
	var builder strings.Builder
	builder.WriteString(caseInsensitiveFlag)
	builder.WriteByte('^')
	for _, character := range pattern {
		switch character {
		case '.':
			builder.WriteString(`\.`)
		case '*':
			builder.WriteString(".*")
		case '?':
			builder.WriteByte('.')
		default:
			builder.WriteRune(character)
		}
	}
	builder.WriteByte('$')
	expression, compileError := regexp.Compile(builder.String())
	if compileError != nil {
		return nil
	}
	return expression
}

// IsBinaryPath reports whether the final path segment carries a known binary extension.
func IsBinaryPath(filePath string) bool {
	extension := strings.ToLower(path.Ext(filePath))
	if extension == "" {
		return false
	}
	_, isBinary := binaryExtensions[extension]
	return isBinary
}
