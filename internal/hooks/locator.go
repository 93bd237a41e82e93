package hooks

import (
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	gitMetadataEntryNameConstant          = ".git"
	hooksDirectoryNameConstant            = "hooks"
	preCommitHookNameConstant             = "pre-commit"
	gitDirectoryPointerPrefixConstant     = "gitdir:"
	gitDirectoryPointerLineBreaksConstant = "\r\n"
	commonDirectoryFileNameConstant       = "commondir"
)

// StatFunc reports metadata for a path; a nil error means the path exists.
type StatFunc func(path string) (fs.FileInfo, error)

// LocateRepository walks from startDirectory through each ancestor, up to and
// including the filesystem root, and returns the first directory holding a
// .git entry. Each step moves to filepath.Dir of the previous directory, so
// the walk stops at the fixed point where a directory is its own parent.
func LocateRepository(startDirectory string, stat StatFunc) (string, bool) {
	if stat == nil {
		return "", false
	}

	currentDirectory := filepath.Clean(startDirectory)
	for {
		if _, statError := stat(filepath.Join(currentDirectory, gitMetadataEntryNameConstant)); statError == nil {
			return currentDirectory, true
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", false
		}
		currentDirectory = parentDirectory
	}
}

// resolveGitDirectory returns the git metadata directory for a repository
// root. Worktrees and submodules store a "gitdir: <path>" pointer file in
// place of the .git directory; an unreadable or malformed pointer falls back
// to <root>/.git.
func resolveGitDirectory(fileSystem FileSystem, repositoryRoot string) string {
	defaultGitDirectory := filepath.Join(repositoryRoot, gitMetadataEntryNameConstant)

	entryInfo, statError := fileSystem.Stat(defaultGitDirectory)
	if statError != nil || entryInfo.IsDir() {
		return defaultGitDirectory
	}

	pointerContent, readError := fileSystem.ReadFile(defaultGitDirectory)
	if readError != nil {
		return defaultGitDirectory
	}

	pointerTarget, parsed := parseGitDirectoryPointer(string(pointerContent))
	if !parsed {
		return defaultGitDirectory
	}

	if !filepath.IsAbs(pointerTarget) {
		pointerTarget = filepath.Join(repositoryRoot, pointerTarget)
	}
	return filepath.Clean(pointerTarget)
}

// resolveCommonDirectory returns the directory git reads hooks from. A linked
// worktree's git directory names the shared repository directory in its
// commondir file, relative to itself; submodules and plain repositories have
// no commondir file and keep their own git directory.
func resolveCommonDirectory(fileSystem FileSystem, gitDirectory string) string {
	commonDirectoryContent, readError := fileSystem.ReadFile(filepath.Join(gitDirectory, commonDirectoryFileNameConstant))
	if readError != nil {
		return gitDirectory
	}

	commonDirectory := strings.TrimSpace(firstLine(string(commonDirectoryContent)))
	if len(commonDirectory) == 0 {
		return gitDirectory
	}

	if !filepath.IsAbs(commonDirectory) {
		commonDirectory = filepath.Join(gitDirectory, commonDirectory)
	}
	return filepath.Clean(commonDirectory)
}

func firstLine(content string) string {
	if lineBreakIndex := strings.IndexAny(content, gitDirectoryPointerLineBreaksConstant); lineBreakIndex >= 0 {
		return content[:lineBreakIndex]
	}
	return content
}

func parseGitDirectoryPointer(pointerContent string) (string, bool) {
	pointerLine := firstLine(pointerContent)
	if !strings.HasPrefix(pointerLine, gitDirectoryPointerPrefixConstant) {
		return "", false
	}

	target := strings.TrimSpace(strings.TrimPrefix(pointerLine, gitDirectoryPointerPrefixConstant))
	if len(target) == 0 {
		return "", false
	}
	return target, true
}

func resolveLocation(fileSystem FileSystem, repositoryRoot string) Location {
	gitDirectory := resolveGitDirectory(fileSystem, repositoryRoot)
	hooksDirectory := filepath.Join(resolveCommonDirectory(fileSystem, gitDirectory), hooksDirectoryNameConstant)
	return Location{
		RepositoryRoot: repositoryRoot,
		HooksDirectory: hooksDirectory,
		HookPath:       filepath.Join(hooksDirectory, preCommitHookNameConstant),
	}
}
