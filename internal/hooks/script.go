package hooks

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// SentinelLine marks a pre-commit hook as written by hookguard. Hooks without it are never modified or removed.
	SentinelLine = "# hookguard: managed pre-commit hook, remove with 'hookguard uninstall'"

	// DefaultScannerCommand is the scanner executable invoked when configuration does not name one.
	DefaultScannerCommand = "hookguard-scan"

	extensionAlternativeSeparatorConstant = "|"
	extensionDotPrefixConstant            = "."
	emptyScannerCommandMessageConstant    = "scanner command must not be empty"
	emptyExtensionListMessageConstant     = "at least one file extension is required"
	invalidScannerCommandTemplateConstant = "scanner command %q contains unsupported characters"
	invalidExtensionTemplateConstant      = "file extension %q must start with a dot followed by letters, digits, '_', '+' or '-'"
)

// DefaultExtensions lists the staged file extensions scanned by the hook.
var DefaultExtensions = []string{".js", ".ts", ".jsx", ".tsx", ".py", ".mjs", ".cjs"}

var (
	scannerCommandPattern = regexp.MustCompile(`^[A-Za-z0-9_./@+:=-]+( [A-Za-z0-9_./@+:=-]+)*$`)
	extensionPattern      = regexp.MustCompile(`^\.[A-Za-z0-9_+-]+$`)
)

const hookScriptTemplateConstant = `#!/bin/sh
%[1]s
# Scans staged source files with %[2]s before each commit.

STAGED_FILES=$(git diff --cached --name-only --diff-filter=ACM | grep -E '\.(%[3]s)$')

if [ -z "$STAGED_FILES" ]; then
  exit 0
fi

echo "hookguard: scanning staged files..."

FAILED=0
while IFS= read -r FILE; do
  [ -z "$FILE" ] && continue
  if ! %[2]s scan "$FILE" --json > /dev/null 2>&1; then
    echo "hookguard: security issues found in $FILE"
    FAILED=1
  fi
done <<EOF
$STAGED_FILES
EOF

if [ "$FAILED" -ne 0 ]; then
  echo ""
  echo "hookguard: commit blocked. Run '%[2]s scan <file>' for details."
  echo "hookguard: to commit anyway, use 'git commit --no-verify'."
  exit 1
fi

exit 0
`

// HookScript holds the rendered pre-commit script. It is built once and never mutated.
type HookScript struct {
	content []byte
}

// NewHookScript renders the hook for the given scanner command and staged file extensions.
func NewHookScript(scannerCommand string, extensions []string) (HookScript, error) {
	trimmedScannerCommand := strings.TrimSpace(scannerCommand)
	if len(trimmedScannerCommand) == 0 {
		return HookScript{}, errors.New(emptyScannerCommandMessageConstant)
	}
	if !scannerCommandPattern.MatchString(trimmedScannerCommand) {
		return HookScript{}, fmt.Errorf(invalidScannerCommandTemplateConstant, trimmedScannerCommand)
	}

	if len(extensions) == 0 {
		return HookScript{}, errors.New(emptyExtensionListMessageConstant)
	}

	extensionAlternatives := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		trimmedExtension := strings.TrimSpace(extension)
		if !extensionPattern.MatchString(trimmedExtension) {
			return HookScript{}, fmt.Errorf(invalidExtensionTemplateConstant, extension)
		}
		extensionAlternatives = append(extensionAlternatives, regexp.QuoteMeta(strings.TrimPrefix(trimmedExtension, extensionDotPrefixConstant)))
	}

	content := fmt.Sprintf(hookScriptTemplateConstant, SentinelLine, trimmedScannerCommand, strings.Join(extensionAlternatives, extensionAlternativeSeparatorConstant))
	return HookScript{content: []byte(content)}, nil
}

// DefaultHookScript renders the hook with the default scanner and extensions.
func DefaultHookScript() HookScript {
	script, _ := NewHookScript(DefaultScannerCommand, DefaultExtensions)
	return script
}

// Content returns a copy of the rendered script.
func (script HookScript) Content() []byte {
	return append([]byte{}, script.content...)
}

// ContainsSentinel reports whether hook content carries the hookguard ownership marker.
func ContainsSentinel(content []byte) bool {
	return bytes.Contains(content, []byte(SentinelLine))
}
