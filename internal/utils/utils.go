// Package utils contains general helper functions used across repoflat.
package utils

import "strings"

// DeduplicatePatterns trims patterns, drops blanks and removes duplicates while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == EmptyString {
			continue
		}
		if _, exists := encounteredPatterns[trimmedPattern]; !exists {
			encounteredPatterns[trimmedPattern] = struct{}{}
			result = append(result, trimmedPattern)
		}
	}
	return result
}

// SplitPatternList splits a comma or newline separated pattern list, as typed on the command line.
func SplitPatternList(rawPatterns string) []string {
	fields := strings.FieldsFunc(rawPatterns, func(character rune) bool {
		return character == ',' || character == '\n'
	})
	return DeduplicatePatterns(fields)
}
