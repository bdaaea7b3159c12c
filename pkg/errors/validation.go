package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds node ids and session names accepted from hosts.
const maxIdentifierLength = 256

// ValidateIdentifier validates a node or edge identifier received from a host.
// Identifiers are opaque, but they must be non-empty, bounded and free of
// control characters so they can be logged and echoed back safely.
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidArgument, "identifier cannot be empty")
	}

	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidArgument, "identifier too long (max %d characters)", maxIdentifierLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "identifier contains invalid control characters")
		}
	}

	return nil
}

// sessionNameRegex matches names usable as a file basename or a Redis key suffix.
var sessionNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateSessionName validates a view session name.
// Session names become file names in the file store, so anything that could
// escape the session directory is rejected:
//   - No empty names
//   - No path separators or traversal sequences
//   - No hidden files (leading dot)
func ValidateSessionName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return New(ErrCodeInvalidInput, "invalid session name: %s", UserMessage(err))
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "session name cannot contain path components: %q", name)
	}

	if !sessionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid session name: %q", name)
	}

	return nil
}
