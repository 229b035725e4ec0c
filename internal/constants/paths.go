package constants

// Directory names and paths used by qaforge.
const (
	// QAForgeHome is the hidden directory in the user's home directory where
	// qaforge keeps global configuration and logs.
	QAForgeHome = ".qaforge"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the rotating CLI log file under ~/.qaforge/logs.
	CLILogFileName = "qaforge.log"

	// DefaultOutputDir is the default scenarios root.
	DefaultOutputDir = "deliverables/scenarios"

	// DefaultToolsDir is the default location of collaborator tools.
	DefaultToolsDir = "scripts"

	// DefaultScenariosFile is the default scenario-description source passed
	// to the scripts collaborator.
	DefaultScenariosFile = "test_scenarios.md"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file under QAForgeHome.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the project-level configuration directory.
	ProjectConfigDir = ".qaforge"

	// EnvPrefix is the prefix of environment variable overrides.
	EnvPrefix = "QAFORGE"
)

// CLI log rotation settings.
const (
	LogMaxSizeMB  = 10
	LogMaxBackups = 5
	LogMaxAgeDays = 30
	LogCompress   = true
)
