// Package repository locates repositories from user input and resolves the branch whose tree is exported.
package repository

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/temirov/repoflat/internal/types"
)

const (
	// HostMarker identifies inputs that must be parsed as repository URLs.
	HostMarker = "github.com"

	pathSeparator      = "/"
	treeSegment        = "tree"
	gitSuffix          = ".git"
	defaultURLScheme   = "https://"
	schemeSeparator    = "://"
	minimumURLSegments = 2

	errorEmptyReferenceMessage = "repository reference is empty"
	errorURLFormat             = "%w: %q is not a valid repository URL"
	errorURLSegmentsFormat     = "%w: %q must include owner and repository"
	errorShortFormFormat       = "%w: %q must use the owner/repository form"
)

// ParseReference converts user input into a RepositoryReference.
// URL inputs may carry /tree/<branch>/<subdirectory...>; the owner/repo short form carries neither.
func ParseReference(input string) (types.RepositoryReference, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return types.RepositoryReference{}, fmt.Errorf("%w: %s", types.ErrInvalidReferenceFormat, errorEmptyReferenceMessage)
	}
	if strings.Contains(trimmedInput, HostMarker) {
		return parseURLReference(trimmedInput)
	}
	return parseShortReference(trimmedInput)
}

func parseURLReference(input string) (types.RepositoryReference, error) {
	rawURL := input
	if !strings.Contains(rawURL, schemeSeparator) {
		rawURL = defaultURLScheme + rawURL
	}
	parsedURL, parseError := url.Parse(rawURL)
	if parseError != nil {
		return types.RepositoryReference{}, fmt.Errorf(errorURLFormat, types.ErrInvalidReferenceFormat, input)
	}
	pathSegments := nonEmptySegments(parsedURL.Path)
	if len(pathSegments) < minimumURLSegments {
		return types.RepositoryReference{}, fmt.Errorf(errorURLSegmentsFormat, types.ErrInvalidReferenceFormat, input)
	}

	reference := types.RepositoryReference{
		Owner:         pathSegments[0],
		Repository:    strings.TrimSuffix(pathSegments[1], gitSuffix),
		OriginalInput: input,
	}
	if reference.Repository == "" {
		return types.RepositoryReference{}, fmt.Errorf(errorURLSegmentsFormat, types.ErrInvalidReferenceFormat, input)
	}
	if len(pathSegments) > 3 && pathSegments[2] == treeSegment {
		reference.Branch = pathSegments[3]
		if len(pathSegments) > 4 {
			reference.Subdirectory = strings.Join(pathSegments[4:], pathSeparator)
		}
	}
	return reference, nil
}

func parseShortReference(input string) (types.RepositoryReference, error) {
	parts := strings.Split(input, pathSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return types.RepositoryReference{}, fmt.Errorf(errorShortFormFormat, types.ErrInvalidReferenceFormat, input)
	}
	return types.RepositoryReference{
		Owner:         parts[0],
		Repository:    parts[1],
		OriginalInput: input,
	}, nil
}

func nonEmptySegments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, pathSeparator) {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}
