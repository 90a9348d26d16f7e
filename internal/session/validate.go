package session

import (
	"fmt"
	"regexp"
)

// Session names become directory names under the app home, so the
// charset is deliberately narrow.
var namePattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name is usable as a session name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid session name %q: want lowercase letters, digits, hyphen or underscore, 64 chars max", name)
	}
	return nil
}
