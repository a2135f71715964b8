package pipeline

import (
	"strings"
	"text/template"
)

const codeFence = "```"

// GeneratedTimestampLayout renders generation times as UTC with millisecond precision.
const GeneratedTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const preambleTemplateText = `This document contains the complete source code of the repository consolidated into a single file for streamlined AI analysis.
The repository contents have been processed and combined with security validation bypassed.

# Repository Overview

## About This Document
This consolidated file represents the complete codebase from the repository,
merged into a unified document optimized for AI consumption and automated
analysis workflows.

## Repository Information
- **Repository:** {{.RepositoryPath}}
- **Branch:** {{.Branch}}
- **Total Files:** {{.TotalFiles}}
- **Generated:** {{.Generated}}

## Document Structure
The content is organized in the following sequence:
1. This overview section
2. Repository metadata and information
3. File system hierarchy
4. Repository files (when included)
5. Individual source files, each containing:
   a. File path header (// File: path/to/file)
   b. Complete file contents between separator lines

## Best Practices
- Treat this document as read-only - make changes in the original repository
- Use file path headers to navigate between different source files
- Handle with appropriate security measures as this may contain sensitive data
- This consolidated view is generated from the live repository state

## Important Notes
- Files excluded by configuration rules are omitted
- Binary assets are not included - refer to the file structure for complete file listings
- Default ignore patterns have been applied to filter content
- Security validation is disabled - review content for sensitive information carefully

# Repository Structure

{{.Fence}}
{{.RepositoryPath}}/
{{.Tree}}{{.Fence}}

`

var preambleTemplate = template.Must(template.New("preamble").Parse(preambleTemplateText))

type preambleData struct {
	RepositoryPath string
	Branch         string
	TotalFiles     int
	Generated      string
	Tree           string
	Fence          string
}

func renderPreamble(data preambleData) (string, error) {
	data.Fence = codeFence
	var builder strings.Builder
	if err := preambleTemplate.Execute(&builder, data); err != nil {
		return "", err
	}
	return builder.String(), nil
}
