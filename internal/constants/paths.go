package constants

// Kubernetes configuration paths
const (
	// KubeConfigDir is the standard directory name for Kubernetes configuration
	KubeConfigDir = ".kube"

	// KubeConfigFile is the standard filename for Kubernetes configuration
	KubeConfigFile = "config"
)

// kconsole application paths
const (
	// ConfigDir is the directory name for kconsole configuration
	ConfigDir = ".kconsole"

	// ConfigFileName is the filename for persisted preferences
	ConfigFileName = "config.json"

	// LogFileName is the debug log file name
	LogFileName = "kconsole.log"

	// LogFilePermissions defines the permissions for log files
	LogFilePermissions = 0666

	// ConfigFilePermissions defines the permissions for the preferences file
	ConfigFilePermissions = 0644

	// ConfigDirPermissions defines the permissions for the configuration directory
	ConfigDirPermissions = 0755
)
