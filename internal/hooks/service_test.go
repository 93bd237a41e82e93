package hooks_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/hookguard/internal/hooks"
)

const (
	testNestedPathSegmentOneConstant    = "services"
	testNestedPathSegmentTwoConstant    = "api"
	testNestedPathSegmentThreeConstant  = "internal"
	testInjectedFailureMessageConstant  = "disk full"
	testMainRepositoryDirectoryConstant = "main"
	testWorktreeDirectoryConstant       = "feature"
)

func newTestService(fileSystem hooks.FileSystem) *hooks.Service {
	return hooks.NewService(fileSystem, hooks.DefaultHookScript(), zap.NewNop())
}

func TestServiceReportsMissingRepository(testInstance *testing.T) {
	sandboxRoot := testInstance.TempDir()
	startDirectory := filepath.Join(sandboxRoot, testOutsideDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(startDirectory, 0o755))

	testCases := []struct {
		name      string
		operation func(*hooks.Service, string) hooks.Result
	}{
		{name: "install", operation: (*hooks.Service).Install},
		{name: "uninstall", operation: (*hooks.Service).Uninstall},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sandbox := newSandboxFileSystem(sandboxRoot)

			result := testCase.operation(newTestService(sandbox), startDirectory)
			require.False(testInstance, result.Success)
			require.Equal(testInstance, hooks.OutcomeNotAGitRepository, result.Outcome)
			require.Empty(testInstance, result.Path)
			require.Contains(testInstance, result.Message, startDirectory)
			require.Zero(testInstance, sandbox.mutationCount)

			entries, readError := os.ReadDir(startDirectory)
			require.NoError(testInstance, readError)
			require.Empty(testInstance, entries)
		})
	}
}

func TestServiceInstallIntoFreshRepository(testInstance *testing.T) {
	testCases := []struct {
		name               string
		withHooksDirectory bool
	}{
		{name: "hooks_directory_present", withHooksDirectory: true},
		{name: "hooks_directory_missing", withHooksDirectory: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sandboxRoot, repositoryRoot := createRepository(testInstance, testCase.withHooksDirectory)

			result := newTestService(newSandboxFileSystem(sandboxRoot)).Install(repositoryRoot)
			require.True(testInstance, result.Success)
			require.Equal(testInstance, hooks.OutcomeInstalled, result.Outcome)
			require.Equal(testInstance, hookPathFor(repositoryRoot), result.Path)

			hookInfo, statError := os.Stat(result.Path)
			require.NoError(testInstance, statError)
			require.Equal(testInstance, os.FileMode(0o755), hookInfo.Mode().Perm())

			content, readError := os.ReadFile(result.Path)
			require.NoError(testInstance, readError)
			require.True(testInstance, hooks.ContainsSentinel(content))
			require.Equal(testInstance, hooks.DefaultHookScript().Content(), content)
		})
	}
}

func TestServiceInstallTwiceReportsAlreadyInstalled(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	service := newTestService(newSandboxFileSystem(sandboxRoot))

	firstResult := service.Install(repositoryRoot)
	require.True(testInstance, firstResult.Success)

	firstContent, firstReadError := os.ReadFile(firstResult.Path)
	require.NoError(testInstance, firstReadError)

	secondResult := service.Install(repositoryRoot)
	require.False(testInstance, secondResult.Success)
	require.True(testInstance, secondResult.Benign())
	require.Equal(testInstance, hooks.OutcomeAlreadyInstalled, secondResult.Outcome)
	require.Equal(testInstance, firstResult.Path, secondResult.Path)

	secondContent, secondReadError := os.ReadFile(secondResult.Path)
	require.NoError(testInstance, secondReadError)
	require.Equal(testInstance, firstContent, secondContent)
}

func TestServiceInstallRefusesForeignHook(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	hookPath := writeForeignHook(testInstance, repositoryRoot)
	sandbox := newSandboxFileSystem(sandboxRoot)

	result := newTestService(sandbox).Install(repositoryRoot)
	require.False(testInstance, result.Success)
	require.False(testInstance, result.Benign())
	require.Equal(testInstance, hooks.OutcomeForeignHookExists, result.Outcome)
	require.Equal(testInstance, hookPath, result.Path)
	require.Zero(testInstance, sandbox.mutationCount)

	content, readError := os.ReadFile(hookPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testForeignHookContentConstant, string(content))
}

func TestServiceInstallTreatsUnreadableHookAsAbsent(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	hookPath := writeForeignHook(testInstance, repositoryRoot)
	sandbox := newSandboxFileSystem(sandboxRoot)
	sandbox.readError = os.ErrPermission

	result := newTestService(sandbox).Install(repositoryRoot)
	require.True(testInstance, result.Success)
	require.Equal(testInstance, hooks.OutcomeInstalled, result.Outcome)

	content, readError := os.ReadFile(hookPath)
	require.NoError(testInstance, readError)
	require.True(testInstance, hooks.ContainsSentinel(content))
}

func TestServiceInstallReportsWriteFailures(testInstance *testing.T) {
	injectedError := errors.New(testInjectedFailureMessageConstant)

	testCases := []struct {
		name      string
		configure func(*sandboxFileSystem)
	}{
		{name: "mkdir_failure", configure: func(sandbox *sandboxFileSystem) { sandbox.mkdirError = injectedError }},
		{name: "write_failure", configure: func(sandbox *sandboxFileSystem) { sandbox.writeError = injectedError }},
		{name: "chmod_failure", configure: func(sandbox *sandboxFileSystem) { sandbox.chmodError = injectedError }},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sandboxRoot, repositoryRoot := createRepository(testInstance, false)
			sandbox := newSandboxFileSystem(sandboxRoot)
			testCase.configure(sandbox)

			result := newTestService(sandbox).Install(repositoryRoot)
			require.False(testInstance, result.Success)
			require.Equal(testInstance, hooks.OutcomeWriteFailure, result.Outcome)
			require.Contains(testInstance, result.Message, testInjectedFailureMessageConstant)
			require.Equal(testInstance, hookPathFor(repositoryRoot), result.Path)
		})
	}
}

func TestServiceUninstallLifecycle(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	service := newTestService(newSandboxFileSystem(sandboxRoot))

	require.True(testInstance, service.Install(repositoryRoot).Success)

	removeResult := service.Uninstall(repositoryRoot)
	require.True(testInstance, removeResult.Success)
	require.Equal(testInstance, hooks.OutcomeUninstalled, removeResult.Outcome)
	require.Equal(testInstance, hookPathFor(repositoryRoot), removeResult.Path)

	_, statError := os.Stat(removeResult.Path)
	require.ErrorIs(testInstance, statError, os.ErrNotExist)

	secondResult := service.Uninstall(repositoryRoot)
	require.False(testInstance, secondResult.Success)
	require.Equal(testInstance, hooks.OutcomeNoHookFound, secondResult.Outcome)
}

func TestServiceUninstallRefusesForeignHook(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	hookPath := writeForeignHook(testInstance, repositoryRoot)
	sandbox := newSandboxFileSystem(sandboxRoot)

	result := newTestService(sandbox).Uninstall(repositoryRoot)
	require.False(testInstance, result.Success)
	require.Equal(testInstance, hooks.OutcomeNotOurHook, result.Outcome)
	require.Equal(testInstance, hookPath, result.Path)
	require.Zero(testInstance, sandbox.mutationCount)

	content, readError := os.ReadFile(hookPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, testForeignHookContentConstant, string(content))
}

func TestServiceUninstallReportsReadAndDeleteFailures(testInstance *testing.T) {
	injectedError := errors.New(testInjectedFailureMessageConstant)

	testCases := []struct {
		name            string
		configure       func(*sandboxFileSystem)
		expectedOutcome hooks.Outcome
	}{
		{
			name:            "read_failure",
			configure:       func(sandbox *sandboxFileSystem) { sandbox.readError = injectedError },
			expectedOutcome: hooks.OutcomeReadFailure,
		},
		{
			name:            "delete_failure",
			configure:       func(sandbox *sandboxFileSystem) { sandbox.removeError = injectedError },
			expectedOutcome: hooks.OutcomeDeleteFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sandboxRoot, repositoryRoot := createRepository(testInstance, true)
			require.True(testInstance, newTestService(newSandboxFileSystem(sandboxRoot)).Install(repositoryRoot).Success)

			sandbox := newSandboxFileSystem(sandboxRoot)
			testCase.configure(sandbox)

			result := newTestService(sandbox).Uninstall(repositoryRoot)
			require.False(testInstance, result.Success)
			require.Equal(testInstance, testCase.expectedOutcome, result.Outcome)
			require.Contains(testInstance, result.Message, testInjectedFailureMessageConstant)

			_, statError := os.Stat(hookPathFor(repositoryRoot))
			require.NoError(testInstance, statError)
		})
	}
}

func TestServiceLocatesRepositoryFromNestedDirectory(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, false)
	nestedDirectory := filepath.Join(repositoryRoot, testNestedPathSegmentOneConstant, testNestedPathSegmentTwoConstant, testNestedPathSegmentThreeConstant)
	require.NoError(testInstance, os.MkdirAll(nestedDirectory, 0o755))

	service := newTestService(newSandboxFileSystem(sandboxRoot))

	installResult := service.Install(nestedDirectory)
	require.True(testInstance, installResult.Success)
	require.Equal(testInstance, hookPathFor(repositoryRoot), installResult.Path)

	uninstallResult := service.Uninstall(nestedDirectory)
	require.True(testInstance, uninstallResult.Success)
	require.Equal(testInstance, hookPathFor(repositoryRoot), uninstallResult.Path)
}

func TestServiceResolvesHooksDirectoryThroughGitPointer(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		pointedGitDirectory   []string
		commonDirectory       string
		expectedHooksSegments []string
	}{
		{
			name:                  "linked_worktree_uses_common_directory",
			pointedGitDirectory:   []string{testMainRepositoryDirectoryConstant, testGitDirectoryNameConstant, "worktrees", testWorktreeDirectoryConstant},
			commonDirectory:       "../..\n",
			expectedHooksSegments: []string{testMainRepositoryDirectoryConstant, testGitDirectoryNameConstant, testHooksDirectoryNameConstant},
		},
		{
			name:                  "submodule_uses_pointer_target",
			pointedGitDirectory:   []string{testMainRepositoryDirectoryConstant, testGitDirectoryNameConstant, "modules", testWorktreeDirectoryConstant},
			expectedHooksSegments: []string{testMainRepositoryDirectoryConstant, testGitDirectoryNameConstant, "modules", testWorktreeDirectoryConstant, testHooksDirectoryNameConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sandboxRoot := testInstance.TempDir()
			pointedGitDirectory := filepath.Join(append([]string{sandboxRoot}, testCase.pointedGitDirectory...)...)
			checkoutRoot := filepath.Join(sandboxRoot, testWorktreeDirectoryConstant)
			require.NoError(testInstance, os.MkdirAll(pointedGitDirectory, 0o755))
			require.NoError(testInstance, os.MkdirAll(checkoutRoot, 0o755))

			relativeTarget, relativeError := filepath.Rel(checkoutRoot, pointedGitDirectory)
			require.NoError(testInstance, relativeError)
			require.NoError(testInstance, os.WriteFile(filepath.Join(checkoutRoot, testGitDirectoryNameConstant), []byte("gitdir: "+relativeTarget+"\n"), 0o644))
			if len(testCase.commonDirectory) > 0 {
				require.NoError(testInstance, os.WriteFile(filepath.Join(pointedGitDirectory, "commondir"), []byte(testCase.commonDirectory), 0o644))
			}

			expectedHookPath := filepath.Join(append(append([]string{sandboxRoot}, testCase.expectedHooksSegments...), testPreCommitHookNameConstant)...)
			service := newTestService(newSandboxFileSystem(sandboxRoot))

			installResult := service.Install(checkoutRoot)
			require.True(testInstance, installResult.Success)
			require.Equal(testInstance, expectedHookPath, installResult.Path)

			content, readError := os.ReadFile(expectedHookPath)
			require.NoError(testInstance, readError)
			require.True(testInstance, hooks.ContainsSentinel(content))

			uninstallResult := service.Uninstall(checkoutRoot)
			require.True(testInstance, uninstallResult.Success)
			require.Equal(testInstance, expectedHookPath, uninstallResult.Path)
		})
	}
}

func TestServiceIgnoresBlankCommonDirectory(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryRoot, testGitDirectoryNameConstant, "commondir"), []byte("  \n"), 0o644))

	result := newTestService(newSandboxFileSystem(sandboxRoot)).Install(repositoryRoot)
	require.True(testInstance, result.Success)
	require.Equal(testInstance, hookPathFor(repositoryRoot), result.Path)
}

func TestServiceFallsBackWhenGitPointerMalformed(testInstance *testing.T) {
	sandboxRoot := testInstance.TempDir()
	repositoryRoot := filepath.Join(sandboxRoot, testRepositoryDirectoryConstant)
	require.NoError(testInstance, os.MkdirAll(repositoryRoot, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryRoot, testGitDirectoryNameConstant), []byte("not a pointer\n"), 0o644))

	result := newTestService(newSandboxFileSystem(sandboxRoot)).Install(repositoryRoot)
	require.False(testInstance, result.Success)
	require.Equal(testInstance, hooks.OutcomeWriteFailure, result.Outcome)
	require.Equal(testInstance, hookPathFor(repositoryRoot), result.Path)
}

func TestServiceLogsOutcomes(testInstance *testing.T) {
	sandboxRoot, repositoryRoot := createRepository(testInstance, true)
	hookPath := writeForeignHook(testInstance, repositoryRoot)

	observedCore, observedLogs := observer.New(zap.DebugLevel)
	service := hooks.NewService(newSandboxFileSystem(sandboxRoot), hooks.DefaultHookScript(), zap.New(observedCore))

	service.Install(repositoryRoot)

	warnings := observedLogs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, string(hooks.OutcomeForeignHookExists), warnings[0].ContextMap()["outcome"])
	require.Equal(testInstance, hookPath, warnings[0].ContextMap()["hook_path"])
}
