package hooks

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/hookguard/internal/filesystem"
	"github.com/temirov/hookguard/internal/utils"
	pathutils "github.com/temirov/hookguard/internal/utils/path"
)

const (
	installCommandUseConstant                = "install [start-directory]"
	installCommandShortDescriptionConstant   = "Install the security scan pre-commit hook"
	installCommandLongDescriptionConstant    = "install locates the git repository enclosing the start directory and writes a pre-commit hook that scans staged source files. Existing hooks are never overwritten."
	uninstallCommandUseConstant              = "uninstall [start-directory]"
	uninstallCommandShortDescriptionConstant = "Remove the security scan pre-commit hook"
	uninstallCommandLongDescriptionConstant  = "uninstall removes the pre-commit hook from the git repository enclosing the start directory, provided hookguard installed it."
	rootFlagNameConstant                     = "root"
	rootFlagUsageConstant                    = "Directory to start searching for the git repository"
	scannerCommandFlagNameConstant           = "scanner"
	scannerCommandFlagUsageConstant          = "Scanner executable invoked by the hook"
	resultMessageTemplateConstant            = "%s\n"
	resultPathTemplateConstant               = "hook: %s\n"
	hookScriptErrorTemplateConstant          = "invalid hook configuration: %w"
	logMessageConfigurationConstant          = "hook command configuration"
	logFieldScannerCommandConstant           = "scanner_command"
	logFieldExtensionsConstant               = "extensions"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the current hook command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the install and uninstall cobra commands.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            FileSystem
	HomeExpander          *pathutils.HomeExpander
}

// BuildInstall constructs the install command.
func (builder *CommandBuilder) BuildInstall() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   installCommandUseConstant,
		Short: installCommandShortDescriptionConstant,
		Long:  installCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, renderConfiguredScript, (*Service).Install)
		},
	}
	builder.bindFlags(command)
	command.Flags().String(scannerCommandFlagNameConstant, "", scannerCommandFlagUsageConstant)
	return command, nil
}

// BuildUninstall constructs the uninstall command.
func (builder *CommandBuilder) BuildUninstall() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   uninstallCommandUseConstant,
		Short: uninstallCommandShortDescriptionConstant,
		Long:  uninstallCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, skipScriptRendering, (*Service).Uninstall)
		},
	}
	builder.bindFlags(command)
	return command, nil
}

func (builder *CommandBuilder) bindFlags(command *cobra.Command) {
	command.Flags().String(rootFlagNameConstant, "", rootFlagUsageConstant)
}

func renderConfiguredScript(configuration CommandConfiguration) (HookScript, error) {
	return NewHookScript(configuration.ScannerCommand, configuration.Extensions)
}

// skipScriptRendering serves uninstall, which only inspects the existing hook for the sentinel.
func skipScriptRendering(CommandConfiguration) (HookScript, error) {
	return HookScript{}, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, scriptRenderer func(CommandConfiguration) (HookScript, error), operation func(*Service, string) Result) error {
	configuration := builder.resolveConfiguration(command)
	logger := builder.resolveLogger()

	logger.Debug(
		logMessageConfigurationConstant,
		zap.String(logFieldScannerCommandConstant, configuration.ScannerCommand),
		zap.Strings(logFieldExtensionsConstant, configuration.Extensions),
	)

	script, scriptError := scriptRenderer(configuration)
	if scriptError != nil {
		return fmt.Errorf(hookScriptErrorTemplateConstant, scriptError)
	}

	service := NewService(builder.resolveFileSystem(), script, logger)
	result := operation(service, builder.resolveStartDirectory(command, arguments, configuration))
	if !result.Benign() {
		return &OperationError{Result: result}
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	fmt.Fprintf(outputWriter, resultMessageTemplateConstant, result.Message)
	if len(result.Path) > 0 {
		fmt.Fprintf(outputWriter, resultPathTemplateConstant, result.Path)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if scannerFlag := command.Flags().Lookup(scannerCommandFlagNameConstant); scannerFlag != nil && scannerFlag.Changed {
		configuration.ScannerCommand = scannerFlag.Value.String()
	}

	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveStartDirectory(command *cobra.Command, arguments []string, configuration CommandConfiguration) string {
	startDirectory := configuration.Root
	if rootFlag := command.Flags().Lookup(rootFlagNameConstant); rootFlag != nil && rootFlag.Changed {
		startDirectory = rootFlag.Value.String()
	}
	if len(arguments) > 0 {
		startDirectory = arguments[0]
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return homeExpander.Expand(startDirectory)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem == nil {
		return filesystem.OSFileSystem{}
	}
	return builder.FileSystem
}
