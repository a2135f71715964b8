// Package tree renders repository file paths as an ASCII directory tree.
package tree

import (
	"sort"
	"strings"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	pathSeparator = "/"
)

// Node maps a path segment to its child directory, or to nil when the segment is a file.
type Node map[string]Node

// Build constructs the nested representation of the provided slash-separated paths.
func Build(paths []string) Node {
	root := Node{}
	for _, filePath := range paths {
		segments := strings.Split(filePath, pathSeparator)
		current := root
		for segmentIndex, segment := range segments {
			isLastSegment := segmentIndex == len(segments)-1
			child, exists := current[segment]
			if isLastSegment {
				if !exists {
					current[segment] = nil
				}
				break
			}
			if child == nil {
				child = Node{}
				current[segment] = child
			}
			current = child
		}
	}
	return root
}

// Render returns one line per entry: directories before files, names in byte order,
// └── for the last sibling and ├── for the rest.
func (node Node) Render() string {
	var builder strings.Builder
	node.render(&builder, "")
	return builder.String()
}

func (node Node) render(builder *strings.Builder, prefix string) {
	names := node.sortedNames()
	for nameIndex, name := range names {
		isLast := nameIndex == len(names)-1
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(name)
		builder.WriteByte('\n')
		if child := node[name]; child != nil {
			child.render(builder, childPrefix)
		}
	}
}

func (node Node) sortedNames() []string {
	names := make([]string, 0, len(node))
	for name := range node {
		names = append(names, name)
	}
	sort.Slice(names, func(left, right int) bool {
		leftIsDirectory := node[names[left]] != nil
		rightIsDirectory := node[names[right]] != nil
		if leftIsDirectory != rightIsDirectory {
			return leftIsDirectory
		}
		return names[left] < names[right]
	})
	return names
}

// RenderPaths builds and renders paths in one step.
func RenderPaths(paths []string) string {
	return Build(paths).Render()
}
