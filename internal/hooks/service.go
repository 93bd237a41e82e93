package hooks

import (
	"fmt"
	"io/fs"

	"go.uber.org/zap"
)

const (
	hookFilePermissionsConstant       fs.FileMode = 0o755
	hooksDirectoryPermissionsConstant fs.FileMode = 0o755

	installedMessageConstant                    = "pre-commit hook installed"
	alreadyInstalledMessageConstant             = "pre-commit hook already installed"
	foreignHookExistsMessageConstant            = "a pre-commit hook not managed by hookguard already exists; remove or merge it manually"
	uninstalledMessageConstant                  = "pre-commit hook removed"
	noHookFoundMessageConstant                  = "no pre-commit hook found"
	notOurHookMessageConstant                   = "pre-commit hook was not installed by hookguard; leaving it in place"
	notAGitRepositoryTemplateConstant           = "not a git repository (or any parent directory): %s"
	unresolvedStartDirectoryTemplateConstant    = "unable to resolve start directory %s: %v"
	writeFailureTemplateConstant                = "unable to write pre-commit hook: %v"
	createHooksDirectoryFailureTemplateConstant = "unable to create hooks directory: %v"
	setPermissionsFailureTemplateConstant       = "unable to make pre-commit hook executable: %v"
	readFailureTemplateConstant                 = "unable to read pre-commit hook: %v"
	deleteFailureTemplateConstant               = "unable to remove pre-commit hook: %v"

	logMessageRepositoryResolvedConstant     = "repository resolved"
	logMessageExistingHookUnreadableConstant = "existing pre-commit hook unreadable; treating as absent"
	logMessageInstallCompletedConstant       = "hook install finished"
	logMessageUninstallCompletedConstant     = "hook uninstall finished"
	logFieldStartDirectoryConstant           = "start_directory"
	logFieldRepositoryRootConstant           = "repository_root"
	logFieldHookPathConstant                 = "hook_path"
	logFieldOutcomeConstant                  = "outcome"
	logFieldSuccessConstant                  = "success"
)

// Service installs and removes the hookguard pre-commit hook.
type Service struct {
	fileSystem FileSystem
	script     HookScript
	logger     *zap.Logger
}

// NewService constructs a Service writing script through fileSystem.
func NewService(fileSystem FileSystem, script HookScript, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fileSystem: fileSystem, script: script, logger: logger}
}

// Install writes the pre-commit hook into the repository enclosing startDirectory.
// Existing hooks are never overwritten.
func (service *Service) Install(startDirectory string) Result {
	result := service.install(startDirectory)
	service.logResult(logMessageInstallCompletedConstant, startDirectory, result)
	return result
}

// Uninstall removes the pre-commit hook from the repository enclosing startDirectory,
// provided hookguard wrote it.
func (service *Service) Uninstall(startDirectory string) Result {
	result := service.uninstall(startDirectory)
	service.logResult(logMessageUninstallCompletedConstant, startDirectory, result)
	return result
}

func (service *Service) install(startDirectory string) Result {
	location, failure, located := service.locate(startDirectory)
	if !located {
		return failure
	}

	if _, statError := service.fileSystem.Stat(location.HookPath); statError == nil {
		existingContent, readError := service.fileSystem.ReadFile(location.HookPath)
		switch {
		case readError != nil:
			service.logger.Debug(logMessageExistingHookUnreadableConstant, zap.String(logFieldHookPathConstant, location.HookPath), zap.Error(readError))
		case ContainsSentinel(existingContent):
			return newFailure(OutcomeAlreadyInstalled, alreadyInstalledMessageConstant, location.HookPath)
		default:
			return newFailure(OutcomeForeignHookExists, foreignHookExistsMessageConstant, location.HookPath)
		}
	}

	if mkdirError := service.fileSystem.MkdirAll(location.HooksDirectory, hooksDirectoryPermissionsConstant); mkdirError != nil {
		return newFailure(OutcomeWriteFailure, fmt.Sprintf(createHooksDirectoryFailureTemplateConstant, mkdirError), location.HookPath)
	}

	if writeError := service.fileSystem.WriteFile(location.HookPath, service.script.Content(), hookFilePermissionsConstant); writeError != nil {
		return newFailure(OutcomeWriteFailure, fmt.Sprintf(writeFailureTemplateConstant, writeError), location.HookPath)
	}

	if chmodError := service.fileSystem.Chmod(location.HookPath, hookFilePermissionsConstant); chmodError != nil {
		return newFailure(OutcomeWriteFailure, fmt.Sprintf(setPermissionsFailureTemplateConstant, chmodError), location.HookPath)
	}

	return Result{Success: true, Outcome: OutcomeInstalled, Message: installedMessageConstant, Path: location.HookPath}
}

func (service *Service) uninstall(startDirectory string) Result {
	location, failure, located := service.locate(startDirectory)
	if !located {
		return failure
	}

	if _, statError := service.fileSystem.Stat(location.HookPath); statError != nil {
		return newFailure(OutcomeNoHookFound, noHookFoundMessageConstant, location.HookPath)
	}

	existingContent, readError := service.fileSystem.ReadFile(location.HookPath)
	if readError != nil {
		return newFailure(OutcomeReadFailure, fmt.Sprintf(readFailureTemplateConstant, readError), location.HookPath)
	}

	if !ContainsSentinel(existingContent) {
		return newFailure(OutcomeNotOurHook, notOurHookMessageConstant, location.HookPath)
	}

	if removeError := service.fileSystem.Remove(location.HookPath); removeError != nil {
		return newFailure(OutcomeDeleteFailure, fmt.Sprintf(deleteFailureTemplateConstant, removeError), location.HookPath)
	}

	return Result{Success: true, Outcome: OutcomeUninstalled, Message: uninstalledMessageConstant, Path: location.HookPath}
}

func (service *Service) locate(startDirectory string) (Location, Result, bool) {
	absoluteStartDirectory, absError := service.fileSystem.Abs(startDirectory)
	if absError != nil {
		return Location{}, newFailure(OutcomeNotAGitRepository, fmt.Sprintf(unresolvedStartDirectoryTemplateConstant, startDirectory, absError), ""), false
	}

	repositoryRoot, found := LocateRepository(absoluteStartDirectory, service.fileSystem.Stat)
	if !found {
		return Location{}, newFailure(OutcomeNotAGitRepository, fmt.Sprintf(notAGitRepositoryTemplateConstant, absoluteStartDirectory), ""), false
	}

	location := resolveLocation(service.fileSystem, repositoryRoot)
	service.logger.Debug(
		logMessageRepositoryResolvedConstant,
		zap.String(logFieldStartDirectoryConstant, absoluteStartDirectory),
		zap.String(logFieldRepositoryRootConstant, location.RepositoryRoot),
		zap.String(logFieldHookPathConstant, location.HookPath),
	)
	return location, Result{}, true
}

func (service *Service) logResult(message string, startDirectory string, result Result) {
	fields := []zap.Field{
		zap.String(logFieldOutcomeConstant, string(result.Outcome)),
		zap.Bool(logFieldSuccessConstant, result.Success),
		zap.String(logFieldStartDirectoryConstant, startDirectory),
		zap.String(logFieldHookPathConstant, result.Path),
	}
	if result.Benign() {
		service.logger.Info(message, fields...)
		return
	}
	service.logger.Warn(message, fields...)
}

func newFailure(outcome Outcome, message string, hookPath string) Result {
	return Result{Success: false, Outcome: outcome, Message: message, Path: hookPath}
}
