package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/repoflat/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Code   CodeConfiguration   `mapstructure:"code" yaml:"code"`
	Issues IssuesConfiguration `mapstructure:"issues" yaml:"issues"`
	GitHub GitHubConfiguration `mapstructure:"github" yaml:"github"`
}

// CodeConfiguration defines defaults for the code command.
type CodeConfiguration struct {
	SkipLargeFiles       *bool               `mapstructure:"skip_large_files" yaml:"skip_large_files"`
	RemoveLicenseHeaders *bool               `mapstructure:"remove_license_headers" yaml:"remove_license_headers"`
	SkipBinaryFiles      *bool               `mapstructure:"skip_binary_files" yaml:"skip_binary_files"`
	SkipPatterns         []string            `mapstructure:"skip_patterns" yaml:"skip_patterns"`
	SkipPatternsFile     string              `mapstructure:"skip_patterns_file" yaml:"skip_patterns_file"`
	Concurrency          *int                `mapstructure:"concurrency" yaml:"concurrency"`
	Tokens               TokenConfiguration  `mapstructure:"tokens" yaml:"tokens"`
	Output               OutputConfiguration `mapstructure:"output" yaml:"output"`
}

// IssuesConfiguration defines defaults for the issues command.
type IssuesConfiguration struct {
	IncludeOpen   *bool               `mapstructure:"include_open" yaml:"include_open"`
	IncludeClosed *bool               `mapstructure:"include_closed" yaml:"include_closed"`
	Output        OutputConfiguration `mapstructure:"output" yaml:"output"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// OutputConfiguration lists where a finished document is persisted.
type OutputConfiguration struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Stdout    *bool  `mapstructure:"stdout" yaml:"stdout"`
	Clipboard *bool  `mapstructure:"clipboard" yaml:"clipboard"`
}

// GitHubConfiguration points the collaborator clients at their hosts.
type GitHubConfiguration struct {
	APIBaseURL        string   `mapstructure:"api_base_url" yaml:"api_base_url"`
	RawBaseURL        string   `mapstructure:"raw_base_url" yaml:"raw_base_url"`
	Timeout           string   `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond *float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	UserAgent         string   `mapstructure:"user_agent" yaml:"user_agent"`
}

// RequestTimeout parses Timeout. An empty value yields zero, leaving the client default in place.
func (config GitHubConfiguration) RequestTimeout() (time.Duration, error) {
	if config.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parse github.timeout %q: %w", config.Timeout, err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("github.timeout %q must not be negative", config.Timeout)
	}
	return timeout, nil
}

// LoadApplicationConfiguration layers the global file, then the local or explicit file, over the
// built-in defaults. Missing files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged := DefaultApplicationConfiguration()

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if options.ExplicitFilePath != "" {
		if _, statErr := os.Stat(localPath); statErr != nil {
			return ApplicationConfiguration{}, fmt.Errorf("configuration file %s: %w", localPath, statErr)
		}
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Code.SkipPatterns = utils.DeduplicatePatterns(merged.Code.SkipPatterns)
	if merged.Code.SkipPatternsFile != "" && !filepath.IsAbs(merged.Code.SkipPatternsFile) {
		merged.Code.SkipPatternsFile = filepath.Join(workingDirectory, merged.Code.SkipPatternsFile)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Code = result.Code.merge(override.Code)
	result.Issues = result.Issues.merge(override.Issues)
	result.GitHub = result.GitHub.merge(override.GitHub)
	return result
}

func (config CodeConfiguration) merge(override CodeConfiguration) CodeConfiguration {
	result := config
	if override.SkipLargeFiles != nil {
		result.SkipLargeFiles = cloneBool(override.SkipLargeFiles)
	}
	if override.RemoveLicenseHeaders != nil {
		result.RemoveLicenseHeaders = cloneBool(override.RemoveLicenseHeaders)
	}
	if override.SkipBinaryFiles != nil {
		result.SkipBinaryFiles = cloneBool(override.SkipBinaryFiles)
	}
	if len(override.SkipPatterns) > 0 {
		result.SkipPatterns = append([]string{}, utils.DeduplicatePatterns(override.SkipPatterns)...)
	}
	if override.SkipPatternsFile != "" {
		result.SkipPatternsFile = override.SkipPatternsFile
	}
	if override.Concurrency != nil {
		result.Concurrency = cloneInt(override.Concurrency)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Output = result.Output.merge(override.Output)
	return result
}

func (config IssuesConfiguration) merge(override IssuesConfiguration) IssuesConfiguration {
	result := config
	if override.IncludeOpen != nil {
		result.IncludeOpen = cloneBool(override.IncludeOpen)
	}
	if override.IncludeClosed != nil {
		result.IncludeClosed = cloneBool(override.IncludeClosed)
	}
	result.Output = result.Output.merge(override.Output)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config OutputConfiguration) merge(override OutputConfiguration) OutputConfiguration {
	result := config
	if override.Directory != "" {
		result.Directory = override.Directory
	}
	if override.Stdout != nil {
		result.Stdout = cloneBool(override.Stdout)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config GitHubConfiguration) merge(override GitHubConfiguration) GitHubConfiguration {
	result := config
	if override.APIBaseURL != "" {
		result.APIBaseURL = override.APIBaseURL
	}
	if override.RawBaseURL != "" {
		result.RawBaseURL = override.RawBaseURL
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.RequestsPerSecond != nil {
		cloned := *override.RequestsPerSecond
		result.RequestsPerSecond = &cloned
	}
	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	return result
}

// BoolValue dereferences value, treating nil as false.
func BoolValue(value *bool) bool {
	return value != nil && *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
