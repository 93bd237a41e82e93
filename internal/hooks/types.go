package hooks

import (
	"fmt"
	"io/fs"
)

const (
	operationErrorWithPathTemplateConstant = "%s (%s)"
)

// Outcome names the terminal state of an install or uninstall operation.
type Outcome string

// Supported outcomes.
const (
	OutcomeInstalled         Outcome = "Installed"
	OutcomeUninstalled       Outcome = "Uninstalled"
	OutcomeNotAGitRepository Outcome = "NotAGitRepository"
	OutcomeAlreadyInstalled  Outcome = "AlreadyInstalled"
	OutcomeForeignHookExists Outcome = "ForeignHookExists"
	OutcomeWriteFailure      Outcome = "WriteFailure"
	OutcomeReadFailure       Outcome = "ReadFailure"
	OutcomeDeleteFailure     Outcome = "DeleteFailure"
	OutcomeNoHookFound       Outcome = "NoHookFound"
	OutcomeNotOurHook        Outcome = "NotOurHook"
)

// Result reports the outcome of a hook operation. Path is empty when the hook location could not be resolved.
type Result struct {
	Success bool
	Outcome Outcome
	Message string
	Path    string
}

// Benign reports whether the result should not be surfaced to the user as a failure.
func (result Result) Benign() bool {
	return result.Success || result.Outcome == OutcomeAlreadyInstalled
}

// OperationError adapts a non-benign Result to the error interface for command callers.
type OperationError struct {
	Result Result
}

// Error returns the result message, suffixed with the hook path when known.
func (operationError *OperationError) Error() string {
	if len(operationError.Result.Path) == 0 {
		return operationError.Result.Message
	}
	return fmt.Sprintf(operationErrorWithPathTemplateConstant, operationError.Result.Message, operationError.Result.Path)
}

// FileSystem exposes the file operations the hook manager performs.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	Chmod(path string, permissions fs.FileMode) error
	Remove(path string) error
}

// Location describes where a repository's pre-commit hook lives.
type Location struct {
	RepositoryRoot string
	HooksDirectory string
	HookPath       string
}
