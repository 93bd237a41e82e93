package cli

import (
	_ "embed"

	"github.com/temirov/hookguard/internal/hooks"
	"github.com/temirov/hookguard/internal/utils"
)

//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// EmbeddedDefaultConfiguration returns a copy of the bundled config.yaml and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), defaultConfigurationDocument...), configurationTypeConstant
}

// defaultConfigurationValues backs every key the bundled document declares, so
// HOOKGUARD_ environment overrides resolve even when the document is absent.
func defaultConfigurationValues() map[string]any {
	values := hooks.DefaultConfigurationValues(hooksConfigurationKeyConstant)
	values[commonLogLevelConfigKeyConstant] = string(utils.LogLevelInfo)
	values[commonLogFormatConfigKeyConstant] = string(utils.LogFormatConsole)
	return values
}
