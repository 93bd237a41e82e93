package hooks

import "strings"

const (
	rootConfigurationKeyConstant           = "root"
	scannerCommandConfigurationKeyConstant = "scanner_command"
	extensionsConfigurationKeyConstant     = "extensions"
	configurationKeySeparatorConstant      = "."
	defaultRootConstant                    = "."
)

// CommandConfiguration captures persistent settings for the install and uninstall commands.
type CommandConfiguration struct {
	Root           string   `mapstructure:"root"`
	ScannerCommand string   `mapstructure:"scanner_command"`
	Extensions     []string `mapstructure:"extensions"`
}

// DefaultCommandConfiguration returns baseline configuration values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Root:           defaultRootConstant,
		ScannerCommand: DefaultScannerCommand,
		Extensions:     append([]string{}, DefaultExtensions...),
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys nested under keyPrefix.
func DefaultConfigurationValues(keyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifyConfigurationKey(keyPrefix, rootConfigurationKeyConstant):           defaults.Root,
		qualifyConfigurationKey(keyPrefix, scannerCommandConfigurationKeyConstant): defaults.ScannerCommand,
		qualifyConfigurationKey(keyPrefix, extensionsConfigurationKeyConstant):     defaults.Extensions,
	}
}

// sanitize trims values and restores defaults for blank entries.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := CommandConfiguration{
		Root:           strings.TrimSpace(configuration.Root),
		ScannerCommand: strings.TrimSpace(configuration.ScannerCommand),
	}

	if len(sanitized.Root) == 0 {
		sanitized.Root = defaults.Root
	}
	if len(sanitized.ScannerCommand) == 0 {
		sanitized.ScannerCommand = defaults.ScannerCommand
	}

	for _, extension := range configuration.Extensions {
		trimmedExtension := strings.TrimSpace(extension)
		if len(trimmedExtension) == 0 {
			continue
		}
		sanitized.Extensions = append(sanitized.Extensions, trimmedExtension)
	}
	if len(sanitized.Extensions) == 0 {
		sanitized.Extensions = defaults.Extensions
	}

	return sanitized
}

func qualifyConfigurationKey(keyPrefix string, key string) string {
	trimmedPrefix := strings.Trim(strings.TrimSpace(keyPrefix), configurationKeySeparatorConstant)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
