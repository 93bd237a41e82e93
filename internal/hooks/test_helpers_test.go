package hooks_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/hookguard/internal/filesystem"
)

const (
	testGitDirectoryNameConstant     = ".git"
	testHooksDirectoryNameConstant   = "hooks"
	testPreCommitHookNameConstant    = "pre-commit"
	testForeignHookContentConstant   = "#!/bin/sh\necho custom hook\n"
	testRepositoryDirectoryConstant  = "repository"
	testOutsideDirectoryNameConstant = "outside"
)

// sandboxFileSystem confines .git discovery to root so ancestors of the test
// temp directory never influence results, and records mutating calls.
type sandboxFileSystem struct {
	filesystem.OSFileSystem
	root          string
	readError     error
	writeError    error
	chmodError    error
	mkdirError    error
	removeError   error
	mutationCount int
}

func newSandboxFileSystem(root string) *sandboxFileSystem {
	return &sandboxFileSystem{root: filepath.Clean(root)}
}

func (sandbox *sandboxFileSystem) contains(path string) bool {
	cleanedPath := filepath.Clean(path)
	return cleanedPath == sandbox.root || strings.HasPrefix(cleanedPath, sandbox.root+string(filepath.Separator))
}

func (sandbox *sandboxFileSystem) Stat(path string) (fs.FileInfo, error) {
	if !sandbox.contains(path) {
		return nil, fs.ErrNotExist
	}
	return sandbox.OSFileSystem.Stat(path)
}

func (sandbox *sandboxFileSystem) ReadFile(path string) ([]byte, error) {
	if sandbox.readError != nil {
		return nil, sandbox.readError
	}
	return sandbox.OSFileSystem.ReadFile(path)
}

func (sandbox *sandboxFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	sandbox.mutationCount++
	if sandbox.mkdirError != nil {
		return sandbox.mkdirError
	}
	return sandbox.OSFileSystem.MkdirAll(path, permissions)
}

func (sandbox *sandboxFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	sandbox.mutationCount++
	if sandbox.writeError != nil {
		return sandbox.writeError
	}
	return sandbox.OSFileSystem.WriteFile(path, data, permissions)
}

func (sandbox *sandboxFileSystem) Chmod(path string, permissions fs.FileMode) error {
	sandbox.mutationCount++
	if sandbox.chmodError != nil {
		return sandbox.chmodError
	}
	return sandbox.OSFileSystem.Chmod(path, permissions)
}

func (sandbox *sandboxFileSystem) Remove(path string) error {
	sandbox.mutationCount++
	if sandbox.removeError != nil {
		return sandbox.removeError
	}
	return sandbox.OSFileSystem.Remove(path)
}

// createRepository makes <sandbox>/repository/.git and returns the sandbox and repository paths.
func createRepository(testInstance *testing.T, withHooksDirectory bool) (string, string) {
	testInstance.Helper()

	sandboxRoot := testInstance.TempDir()
	repositoryRoot := filepath.Join(sandboxRoot, testRepositoryDirectoryConstant)
	gitDirectory := filepath.Join(repositoryRoot, testGitDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(gitDirectory, 0o755))

	if withHooksDirectory {
		require.NoError(testInstance, os.MkdirAll(filepath.Join(gitDirectory, testHooksDirectoryNameConstant), 0o755))
	}

	return sandboxRoot, repositoryRoot
}

func hookPathFor(repositoryRoot string) string {
	return filepath.Join(repositoryRoot, testGitDirectoryNameConstant, testHooksDirectoryNameConstant, testPreCommitHookNameConstant)
}

func writeForeignHook(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()

	hookPath := hookPathFor(repositoryRoot)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(hookPath), 0o755))
	require.NoError(testInstance, os.WriteFile(hookPath, []byte(testForeignHookContentConstant), 0o755))
	return hookPath
}

func readHook(testInstance *testing.T, repositoryRoot string) string {
	testInstance.Helper()

	content, readError := os.ReadFile(hookPathFor(repositoryRoot))
	require.NoError(testInstance, readError)
	return string(content)
}
