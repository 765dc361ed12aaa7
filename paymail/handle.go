package paymail

import (
	"fmt"
	"strings"
)

// IsHandle reports whether s looks like a paymail handle rather than an address.
func IsHandle(s string) bool {
	return strings.Contains(s, "@")
}

// ParseHandle splits alias@domain. The domain is lower-cased.
func ParseHandle(handle string) (alias, domain string, err error) {
	parts := strings.Split(strings.TrimSpace(handle), "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	alias, domain = parts[0], strings.ToLower(parts[1])
	if strings.ContainsAny(alias, "/?#") || strings.ContainsAny(domain, "/?#:") || !strings.Contains(domain, ".") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidHandle, handle)
	}
	return alias, domain, nil
}
