package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]{3,30}$`)

// NormalizeUsername converts a username to lowercase and validates format.
// Valid usernames are 3-30 characters containing only lowercase letters,
// numbers, dots, underscores, and hyphens.
func NormalizeUsername(value string) (string, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	if !usernameRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid username. Use 3-30 lowercase characters (letters, numbers, dots, underscores, hyphens)")
	}
	return normalized, nil
}
