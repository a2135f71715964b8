package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/temirov/repoflat/internal/utils"
)

const (
	integrationBinaryBaseName = "repoflat_integration_binary"
	usageSnippet              = "Usage:\n  repoflat"
	versionSnippet            = "repoflat version:"
	environmentFileName       = ".env"
	environmentToken          = "token-from-dotenv"
)

// buildBinary compiles the command into a temporary directory and returns its path.
func buildBinary(testingHandle *testing.T) string {
	testingHandle.Helper()

	binaryName := integrationBinaryBaseName
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(testingHandle.TempDir(), binaryName)

	workingDirectory, err := os.Getwd()
	if err != nil {
		testingHandle.Fatalf("failed to determine working directory: %v", err)
	}
	buildCommand := exec.Command("go", "build", "-o", binaryPath, ".")
	buildCommand.Dir = workingDirectory
	combinedOutput, buildError := buildCommand.CombinedOutput()
	if buildError != nil {
		testingHandle.Fatalf("build failed in %s: %v\n%s", workingDirectory, buildError, string(combinedOutput))
	}
	return binaryPath
}

// commandEnvironment isolates the binary from the caller's home directory and token.
func commandEnvironment(homeDirectory string) []string {
	environment := make([]string, 0, len(os.Environ())+2)
	for _, variable := range os.Environ() {
		if strings.HasPrefix(variable, utils.GitHubTokenEnvironmentVariable+"=") ||
			strings.HasPrefix(variable, "HOME=") ||
			strings.HasPrefix(variable, "USERPROFILE=") {
			continue
		}
		environment = append(environment, variable)
	}
	return append(environment, "HOME="+homeDirectory, "USERPROFILE="+homeDirectory)
}

// runBinary executes the binary and returns stdout, stderr and the run error.
func runBinary(testingHandle *testing.T, binaryPath string, arguments []string, workingDirectory string) (string, string, error) {
	testingHandle.Helper()

	command := exec.Command(binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = commandEnvironment(testingHandle.TempDir())

	var stdoutBuffer, stderrBuffer bytes.Buffer
	command.Stdout = &stdoutBuffer
	command.Stderr = &stderrBuffer
	runError := command.Run()
	return stdoutBuffer.String(), stderrBuffer.String(), runError
}

type recordedAuthorization struct {
	mutex  sync.Mutex
	values []string
}

func (recorded *recordedAuthorization) add(value string) {
	recorded.mutex.Lock()
	defer recorded.mutex.Unlock()
	recorded.values = append(recorded.values, value)
}

func (recorded *recordedAuthorization) contains(value string) bool {
	recorded.mutex.Lock()
	defer recorded.mutex.Unlock()
	for _, candidate := range recorded.values {
		if candidate == value {
			return true
		}
	}
	return false
}

func startRepositoryHosts(testingHandle *testing.T, authorization *recordedAuthorization) (*httptest.Server, *httptest.Server) {
	testingHandle.Helper()
	apiServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		authorization.add(request.Header.Get("Authorization"))
		if request.URL.Path != "/repos/octo/tiny/git/trees/master" {
			writer.WriteHeader(http.StatusNotFound)
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		fmt.Fprint(writer, `{"sha":"1","tree":[{"path":"LICENSE","type":"blob","size":20},{"path":"main.go","type":"blob","size":40}]}`)
	}))
	rawServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/octo/tiny/master/main.go":
			fmt.Fprint(writer, "// Copyright 2024 Octo. MIT License.\n\npackage main\n")
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	testingHandle.Cleanup(apiServer.Close)
	testingHandle.Cleanup(rawServer.Close)
	return apiServer, rawServer
}

// TestRepoflatBinary verifies the built command end to end against local stand-in hosts.
func TestRepoflatBinary(testingHandle *testing.T) {
	if testing.Short() {
		testingHandle.Skip("builds the binary")
	}
	binary := buildBinary(testingHandle)
	authorization := &recordedAuthorization{}
	apiServer, rawServer := startRepositoryHosts(testingHandle, authorization)
	hostFlags := []string{"--api-url", apiServer.URL, "--raw-url", rawServer.URL}

	testCases := []struct {
		name        string
		arguments   []string
		prepare     func(*testing.T) string
		expectError bool
		validate    func(*testing.T, string, string)
	}{
		{
			name:      "NoArgumentsDisplaysHelp",
			arguments: nil,
			validate: func(testingHandle *testing.T, stdout string, _ string) {
				if !strings.Contains(stdout, usageSnippet) {
					testingHandle.Fatalf("expected help output containing %q\n%s", usageSnippet, stdout)
				}
			},
		},
		{
			name:      "VersionFlag",
			arguments: []string{"--version"},
			validate: func(testingHandle *testing.T, stdout string, _ string) {
				if !strings.HasPrefix(stdout, versionSnippet) {
					testingHandle.Fatalf("expected version output, got %q", stdout)
				}
			},
		},
		{
			name:        "InvalidReference",
			arguments:   []string{"code", "not-a-reference"},
			expectError: true,
			validate: func(testingHandle *testing.T, _ string, stderr string) {
				if !strings.Contains(stderr, "invalid repository reference format") {
					testingHandle.Fatalf("expected reference error, got %q", stderr)
				}
			},
		},
		{
			name:        "NoIssueStateSelected",
			arguments:   []string{"issues", "octo/tiny", "--open=false", "--closed=false"},
			expectError: true,
			validate: func(testingHandle *testing.T, _ string, stderr string) {
				if !strings.Contains(stderr, "select at least one issue state") {
					testingHandle.Fatalf("expected state selection error, got %q", stderr)
				}
			},
		},
		{
			name:      "CodeExportFallsBackToMasterAndStripsLicense",
			arguments: append([]string{"code", "octo/tiny", "--stdout", "--strip-license", "--tokens=false"}, hostFlags...),
			prepare: func(testingHandle *testing.T) string {
				workingDirectory := testingHandle.TempDir()
				environmentFile := filepath.Join(workingDirectory, environmentFileName)
				content := utils.GitHubTokenEnvironmentVariable + "=" + environmentToken + "\n"
				if err := os.WriteFile(environmentFile, []byte(content), 0o600); err != nil {
					testingHandle.Fatalf("write %s: %v", environmentFile, err)
				}
				return workingDirectory
			},
			validate: func(testingHandle *testing.T, stdout string, stderr string) {
				if !strings.Contains(stdout, "- **Branch:** master\n") {
					testingHandle.Fatalf("expected master branch in document\n%s", stdout)
				}
				if !strings.Contains(stdout, "// File: main.go\n"+strings.Repeat("=", 80)+"\npackage main\n\n") {
					testingHandle.Fatalf("expected stripped main.go block\n%s", stdout)
				}
				if strings.Contains(stdout, "// File: LICENSE") {
					testingHandle.Fatalf("expected the failed LICENSE download to be skipped\n%s", stdout)
				}
				if !authorization.contains("Bearer " + environmentToken) {
					testingHandle.Fatalf("expected the .env token on API requests")
				}
				if !strings.Contains(stderr, "exported 1 of 2 files (1 skipped)") {
					testingHandle.Fatalf("expected summary line on stderr\n%s", stderr)
				}
			},
		},
		{
			name:      "ConfigInitWritesLocalFile",
			arguments: []string{"config", "init"},
			validate: func(testingHandle *testing.T, stdout string, _ string) {
				if !strings.Contains(stdout, utils.LocalConfigFileName) {
					testingHandle.Fatalf("expected configuration path in output, got %q", stdout)
				}
			},
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			workingDirectory := testingHandle.TempDir()
			if testCase.prepare != nil {
				workingDirectory = testCase.prepare(testingHandle)
			}
			stdout, stderr, runError := runBinary(testingHandle, binary, testCase.arguments, workingDirectory)
			if testCase.expectError && runError == nil {
				testingHandle.Fatalf("command succeeded unexpectedly\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
			}
			if !testCase.expectError && runError != nil {
				testingHandle.Fatalf("command failed: %v\nstdout:\n%s\nstderr:\n%s", runError, stdout, stderr)
			}
			testCase.validate(testingHandle, stdout, stderr)
		})
	}
}
