package utils

const (
	// EmptyString represents a reusable empty string constant.
	EmptyString = ""

	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

	// ApplicationExecutionFailedMessage prefixes fatal command errors.
	ApplicationExecutionFailedMessage = "repoflat failed"

	// ApplicationName names the binary, its configuration directory and its environment prefix.
	ApplicationName = "repoflat"

	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// GitHubTokenEnvironmentVariable supplies the optional API token.
	GitHubTokenEnvironmentVariable = "GITHUB_TOKEN"

	// LocalConfigFileName is the per-directory configuration file.
	LocalConfigFileName = ".repoflat.yaml"

	// GlobalConfigDirectoryName is the configuration directory under the user's home.
	GlobalConfigDirectoryName = ".repoflat"

	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
)
