// Package hooks installs and removes the hookguard git pre-commit hook.
//
// Service locates the repository enclosing a start directory, writes the
// rendered HookScript to <gitdir>/hooks/pre-commit, and refuses to touch any
// hook that does not carry SentinelLine. Every outcome is reported as a Result
// rather than an error. CommandBuilder wires the install and uninstall Cobra
// commands around Service.
package hooks
