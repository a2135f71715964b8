package tree

import "testing"

func TestRenderPlacesDirectoriesFirst(t *testing.T) {
	rendered := RenderPaths([]string{"a.txt", "dir/b.txt", "dir/sub/c.txt"})
	expected := "" +
		"├── dir\n" +
		"│   ├── sub\n" +
		"│   │   └── c.txt\n" +
		"│   └── b.txt\n" +
		"└── a.txt\n"
	if rendered != expected {
		t.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}
}

func TestRenderUsesBlankPaddingUnderLastDirectory(t *testing.T) {
	rendered := RenderPaths([]string{"README.md", "src/main.go", "src/util/strings.go", "src/util/bytes.go"})
	expected := "" +
		"├── src\n" +
		"│   ├── util\n" +
		"│   │   ├── bytes.go\n" +
		"│   │   └── strings.go\n" +
		"│   └── main.go\n" +
		"└── README.md\n"
	if rendered != expected {
		t.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}

	nested := RenderPaths([]string{"only/deep/file.go"})
	expectedNested := "" +
		"└── only\n" +
		"    └── deep\n" +
		"        └── file.go\n"
	if nested != expectedNested {
		t.Fatalf("unexpected nested tree:\n%s\nexpected:\n%s", nested, expectedNested)
	}
}

func TestRenderSortsCaseSensitively(t *testing.T) {
	rendered := RenderPaths([]string{"b.go", "B.go", "a.go"})
	expected := "├── B.go\n├── a.go\n└── b.go\n"
	if rendered != expected {
		t.Fatalf("unexpected ordering:\n%s", rendered)
	}
}

func TestBuildMarksFilesAndDirectories(t *testing.T) {
	root := Build([]string{"dir/file.txt", "top.txt"})
	if root["top.txt"] != nil {
		t.Fatalf("expected top.txt to be a file leaf")
	}
	directory := root["dir"]
	if directory == nil {
		t.Fatalf("expected dir to be a directory node")
	}
	if _, exists := directory["file.txt"]; !exists {
		t.Fatalf("expected file.txt under dir")
	}
	if RenderPaths(nil) != "" {
		t.Fatalf("expected empty rendering for no paths")
	}
}
