// Package config discovers repoflat configuration files and loads skip-pattern lists.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/temirov/repoflat/internal/utils"
)

const commentPrefix = "#"

// LoadSkipPatternsFile reads one skip pattern per line from skipPatternsFilePath. Blank lines and
// lines starting with # are ignored. A missing file yields no patterns.
//
// #nosec G304
func LoadSkipPatternsFile(skipPatternsFilePath string) ([]string, error) {
	if skipPatternsFilePath == "" {
		return nil, nil
	}
	fileHandle, openFileError := os.Open(skipPatternsFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, fmt.Errorf("open skip patterns file %s: %w", skipPatternsFilePath, openFileError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", skipPatternsFilePath, closeError)
		}
	}()

	var skipPatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		skipPatterns = append(skipPatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read skip patterns file %s: %w", skipPatternsFilePath, scanError)
	}
	return skipPatterns, nil
}

// CombinedSkipPatterns joins the configured skip patterns with those of the skip patterns file,
// keeping the first occurrence of each.
func (config CodeConfiguration) CombinedSkipPatterns() ([]string, error) {
	filePatterns, loadError := LoadSkipPatternsFile(config.SkipPatternsFile)
	if loadError != nil {
		return nil, loadError
	}
	combined := make([]string, 0, len(config.SkipPatterns)+len(filePatterns))
	combined = append(combined, config.SkipPatterns...)
	combined = append(combined, filePatterns...)
	return utils.DeduplicatePatterns(combined), nil
}
