package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/repoflat/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConcurrency       = 1
	defaultTokenModel        = "gpt-4o"
	defaultOutputDirectory   = "."
	defaultAPIBaseURL        = "https://api.github.com/"
	defaultRawBaseURL        = "https://raw.githubusercontent.com"
	defaultTimeout           = "30s"
	defaultRequestsPerSecond = 0
	yamlIndent               = 2

	configurationHeader = "# repoflat configuration. Command-line flags override these values.\n"
)

// DefaultApplicationConfiguration returns the values used when no file or flag sets an option.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Code: CodeConfiguration{
			SkipLargeFiles:       boolPointer(true),
			RemoveLicenseHeaders: boolPointer(false),
			SkipBinaryFiles:      boolPointer(false),
			SkipPatterns:         []string{},
			Concurrency:          intPointer(defaultConcurrency),
			Tokens: TokenConfiguration{
				Enabled: boolPointer(true),
				Model:   defaultTokenModel,
			},
			Output: defaultOutputConfiguration(),
		},
		Issues: IssuesConfiguration{
			IncludeOpen:   boolPointer(true),
			IncludeClosed: boolPointer(true),
			Output:        defaultOutputConfiguration(),
		},
		GitHub: GitHubConfiguration{
			APIBaseURL:        defaultAPIBaseURL,
			RawBaseURL:        defaultRawBaseURL,
			Timeout:           defaultTimeout,
			RequestsPerSecond: float64Pointer(defaultRequestsPerSecond),
			UserAgent:         utils.ApplicationName,
		},
	}
}

func defaultOutputConfiguration() OutputConfiguration {
	return OutputConfiguration{
		Directory: defaultOutputDirectory,
		Stdout:    boolPointer(false),
		Clipboard: boolPointer(false),
	}
}

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.LocalConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	content, renderErr := renderDefaultConfiguration()
	if renderErr != nil {
		return "", renderErr
	}
	if err := os.WriteFile(destinationPath, content, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}

func renderDefaultConfiguration() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(configurationHeader)
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndent)
	if err := encoder.Encode(DefaultApplicationConfiguration()); err != nil {
		return nil, fmt.Errorf("encode default configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode default configuration: %w", err)
	}
	return buffer.Bytes(), nil
}

func boolPointer(value bool) *bool {
	return &value
}

func intPointer(value int) *int {
	return &value
}

func float64Pointer(value float64) *float64 {
	return &value
}
