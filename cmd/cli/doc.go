// Package cli constructs the hookguard command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives around the hook install and uninstall commands.
package cli
