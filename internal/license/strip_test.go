package license

import (
	"strings"
	"testing"
)

func TestStripHeader(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "stacked line comments",
			input:    "// Copyright 2020\n// MIT\ncode();\n",
			expected: "code();\n",
		},
		{
			name:     "go style header with trailing blank line",
			input:    "// Copyright 2009 The Go Authors. All rights reserved.\n// Use of this source code is governed by a BSD-style\n// license that can be found in the LICENSE file.\n\npackage strings\n",
			expected: "package strings\n",
		},
		{
			name:     "hash comment",
			input:    "# Copyright 2020 Example\n\n\nprint(1)\n",
			expected: "print(1)\n",
		},
		{
			name:     "single line block comment",
			input:    "/* Copyright 2020 Foo. Apache License */\n\npackage main\n",
			expected: "package main\n",
		},
		{
			name:     "markup comment",
			input:    "<!-- License: MIT -->\n<div></div>\n",
			expected: "<div></div>\n",
		},
		{
			name:     "keyword line closing a multi line block",
			input:    "/*\n * Example project\n * Licensed under GPL */\nint main() {}\n",
			expected: "int main() {}\n",
		},
		{
			name:     "block closed on its own line is kept",
			input:    "/*\n * Copyright 2020\n */\npackage main\n",
			expected: "/*\n * Copyright 2020\n */\npackage main\n",
		},
		{
			name:     "code before keyword",
			input:    "x := 1\n// Copyright 2020\n",
			expected: "x := 1\n// Copyright 2020\n",
		},
		{
			name:     "no keyword keeps leading blank lines",
			input:    "\n\npackage main\n",
			expected: "\n\npackage main\n",
		},
		{
			name:     "ordinary comment kept",
			input:    "// Package main runs things.\npackage main\n",
			expected: "// Package main runs things.\npackage main\n",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := StripHeader(testCase.input); got != testCase.expected {
				t.Fatalf("StripHeader(%q) = %q, expected %q", testCase.input, got, testCase.expected)
			}
		})
	}
}

func TestStripHeaderScansOnlyTwentyLines(t *testing.T) {
	input := strings.Repeat("// note\n", 20) + "// Copyright 2020\ncode()\n"
	if got := StripHeader(input); got != input {
		t.Fatalf("expected keyword beyond the scan window to be ignored, got %q", got)
	}
}
